package entity

import "time"

// Credential representa la conexión OAuth vigente contra QuickBooks Online.
// Hay una fila lógica por conexión (realm); solo el TokenManager la muta.
type Credential struct {
	ID                    string
	RealmID               string // ID de la compañía en Intuit
	AccessToken           string
	RefreshToken          string
	TokenType             string    // "bearer"
	TokenExpiry           time.Time // instante en que expira el access token
	RefreshTokenExpiresIn int64     // segundos de vida restantes del refresh token al emitirse
	IsRefreshTokenExpired bool
	LastRefreshedAt       time.Time
	MinorVersion          int // minorversion del API v3 con la que se registró la conexión
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ExpiresWithin indica si el access token expira dentro de la ventana dada
// (o ya expiró). Es el predicado que dispara el refresh proactivo.
func (c *Credential) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !c.TokenExpiry.After(now.Add(window))
}
