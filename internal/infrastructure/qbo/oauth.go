package qbo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenEndpoint endpoint de Intuit para el grant refresh_token.
const tokenEndpoint = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

// TokenResponse respuesta del endpoint de tokens de Intuit.
type TokenResponse struct {
	AccessToken            string `json:"access_token"`
	RefreshToken           string `json:"refresh_token"`
	TokenType              string `json:"token_type"`
	ExpiresIn              int64  `json:"expires_in"`
	XRefreshTokenExpiresIn int64  `json:"x_refresh_token_expires_in"`
}

// OAuthClient cliente del flujo de refresh contra Intuit. El flujo de
// consentimiento (authorization code) queda fuera: solo el refresh.
type OAuthClient struct {
	httpClient   *http.Client
	endpoint     string
	clientID     string
	clientSecret string
}

// NewOAuthClient construye el cliente con las credenciales de la app Intuit.
func NewOAuthClient(clientID, clientSecret string) *OAuthClient {
	return &OAuthClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		endpoint:     tokenEndpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// NewOAuthClientWithEndpoint construye el cliente contra un endpoint arbitrario (tests).
func NewOAuthClientWithEndpoint(clientID, clientSecret, endpoint string) *OAuthClient {
	c := NewOAuthClient(clientID, clientSecret)
	c.endpoint = endpoint
	return c
}

// Refresh intercambia el refresh token por un nuevo par access/refresh.
// Una sola invocación, sin reintentos; el caller decide qué hacer con el fallo.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh token contra intuit: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("intuit oauth %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var token TokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parsear respuesta de tokens: %w", err)
	}
	if token.AccessToken == "" || token.RefreshToken == "" {
		return nil, fmt.Errorf("intuit oauth: respuesta sin access o refresh token")
	}
	return &token, nil
}
