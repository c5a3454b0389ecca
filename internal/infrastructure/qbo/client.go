// Package qbo implementa el cliente REST contra el API v3 de QuickBooks Online
// y el cliente de refresh del token OAuth contra Intuit. Usa net/http de la
// stdlib; cada llamada es una invocación única sin reintentos, y su fallo se
// mapea tal cual al camino de error por factura del motor.
package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Entornos QuickBooks.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"

	apiBaseSandbox    = "https://sandbox-quickbooks.api.intuit.com"
	apiBaseProduction = "https://quickbooks.api.intuit.com"
)

// Códigos de fault del API de Intuit que el motor distingue.
const (
	faultCodeObjectNotFound = "610"
	faultCodeDuplicateName  = "6240"
)

// Client cliente REST del API v3. Stateless: la sesión (token, realm) se pasa
// en cada llamada.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient construye el cliente según el entorno ("sandbox" o "production").
func NewClient(environment string) *Client {
	base := apiBaseSandbox
	if environment == EnvProduction {
		base = apiBaseProduction
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    base,
	}
}

// NewClientWithBaseURL construye el cliente contra una URL arbitraria (tests).
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ── Errores del API ───────────────────────────────────────────────────────────

// FaultError un error individual dentro de un fault de Intuit.
type FaultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail"`
	Code    string `json:"code"`
}

// Fault estructura de error del API v3.
type Fault struct {
	Type   string       `json:"type"`
	Errors []FaultError `json:"Error"`
}

// APIError error de una llamada al API de QuickBooks. Conserva el cuerpo
// original para diagnóstico del operador.
type APIError struct {
	StatusCode int
	Body       string
	Fault      *Fault
}

func (e *APIError) Error() string {
	if e.Fault != nil && len(e.Fault.Errors) > 0 {
		f := e.Fault.Errors[0]
		if f.Detail != "" {
			return fmt.Sprintf("quickbooks api %d: %s: %s", e.StatusCode, f.Message, f.Detail)
		}
		return fmt.Sprintf("quickbooks api %d: %s", e.StatusCode, f.Message)
	}
	return fmt.Sprintf("quickbooks api %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *APIError) hasFaultCode(code string) bool {
	if e.Fault == nil {
		return false
	}
	for _, f := range e.Fault.Errors {
		if f.Code == code {
			return true
		}
	}
	return false
}

// IsNotFound indica si el error es un "Object Not Found" de QuickBooks.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && (apiErr.hasFaultCode(faultCodeObjectNotFound) || apiErr.StatusCode == http.StatusNotFound)
}

// IsDuplicateName indica si el error es un "Duplicate Name Exists" (la
// creación perdió la carrera contra otro writer; procede re-lookup).
func IsDuplicateName(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.hasFaultCode(faultCodeDuplicateName)
}

// ── Núcleo HTTP ───────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, s Session, method, path string, query url.Values, body, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	if s.MinorVersion > 0 {
		query.Set("minorversion", strconv.Itoa(s.MinorVersion))
	}
	endpoint := c.baseURL + path + "?" + query.Encode()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar payload: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llamada a quickbooks: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
		var faultResp struct {
			Fault *Fault `json:"Fault"`
		}
		if json.Unmarshal(raw, &faultResp) == nil {
			apiErr.Fault = faultResp.Fault
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parsear respuesta de quickbooks: %w", err)
		}
	}
	return nil
}

// query ejecuta una sentencia del query language del API v3.
func (c *Client) query(ctx context.Context, s Session, stmt string, out interface{}) error {
	q := url.Values{}
	q.Set("query", stmt)
	return c.do(ctx, s, http.MethodGet, "/v3/company/"+s.RealmID+"/query", q, nil, out)
}

// escapeValue escapa comillas simples para el query language de Intuit.
func escapeValue(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}

// ── Impuestos ─────────────────────────────────────────────────────────────────

// FindTaxRates devuelve todas las tasas de impuesto del tenant (activas e inactivas).
func (c *Client) FindTaxRates(ctx context.Context, s Session) ([]TaxRate, error) {
	var resp struct {
		QueryResponse struct {
			TaxRate []TaxRate `json:"TaxRate"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, s, "select * from TaxRate", &resp); err != nil {
		return nil, err
	}
	return resp.QueryResponse.TaxRate, nil
}

// FindTaxCodeByName busca un tax code por nombre exacto. nil si no existe.
func (c *Client) FindTaxCodeByName(ctx context.Context, s Session, name string) (*TaxCode, error) {
	var resp struct {
		QueryResponse struct {
			TaxCode []TaxCode `json:"TaxCode"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from TaxCode where Name = '%s'", escapeValue(name))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.TaxCode) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.TaxCode[0], nil
}

// CreateZeroRateTaxCode crea un tax code de tasa cero vía el tax service de
// Intuit (los tax codes no se crean por el endpoint de entidades normal).
func (c *Client) CreateZeroRateTaxCode(ctx context.Context, s Session, name, agencyID string) (*TaxCode, error) {
	body := map[string]interface{}{
		"TaxCode": name,
		"TaxRateDetails": []map[string]string{{
			"TaxRateName":     name + " rate",
			"RateValue":       "0",
			"TaxAgencyId":     agencyID,
			"TaxApplicableOn": "Sales",
		}},
	}
	var resp struct {
		TaxCodeID string `json:"TaxCodeId"`
		TaxCode   string `json:"TaxCode"`
	}
	err := c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/taxservice/taxcode", nil, body, &resp)
	if err != nil {
		return nil, err
	}
	return &TaxCode{ID: resp.TaxCodeID, Name: resp.TaxCode, Active: true}, nil
}

// FindTaxAgencyByName busca una agencia por nombre exacto. nil si no existe.
func (c *Client) FindTaxAgencyByName(ctx context.Context, s Session, name string) (*TaxAgency, error) {
	var resp struct {
		QueryResponse struct {
			TaxAgency []TaxAgency `json:"TaxAgency"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from TaxAgency where DisplayName = '%s'", escapeValue(name))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.TaxAgency) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.TaxAgency[0], nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// FindItemByName busca un ítem por nombre exacto. nil si no existe.
func (c *Client) FindItemByName(ctx context.Context, s Session, name string) (*Item, error) {
	var resp struct {
		QueryResponse struct {
			Item []Item `json:"Item"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from Item where Name = '%s'", escapeValue(name))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Item) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Item[0], nil
}

// CreateItem crea un ítem (servicio o categoría).
func (c *Client) CreateItem(ctx context.Context, s Session, item *Item) (*Item, error) {
	var resp struct {
		Item Item `json:"Item"`
	}
	err := c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/item", nil, item, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// FindAccountByName busca una cuenta por nombre exacto. nil si no existe.
func (c *Client) FindAccountByName(ctx context.Context, s Session, name string) (*Account, error) {
	var resp struct {
		QueryResponse struct {
			Account []Account `json:"Account"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from Account where Name = '%s'", escapeValue(name))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Account) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Account[0], nil
}

// CreateAccount crea una cuenta contable.
func (c *Client) CreateAccount(ctx context.Context, s Session, account *Account) (*Account, error) {
	var resp struct {
		Account Account `json:"Account"`
	}
	err := c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/account", nil, account, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// FindTermByName busca un término de pago por nombre exacto. nil si no existe.
func (c *Client) FindTermByName(ctx context.Context, s Session, name string) (*Term, error) {
	var resp struct {
		QueryResponse struct {
			Term []Term `json:"Term"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from Term where Name = '%s'", escapeValue(name))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Term) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Term[0], nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

// FindCustomerByName busca un cliente por DisplayName exacto. nil si no existe.
func (c *Client) FindCustomerByName(ctx context.Context, s Session, displayName string) (*Customer, error) {
	var resp struct {
		QueryResponse struct {
			Customer []Customer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	stmt := fmt.Sprintf("select * from Customer where DisplayName = '%s'", escapeValue(displayName))
	if err := c.query(ctx, s, stmt, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Customer) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Customer[0], nil
}

// CreateCustomer crea un cliente.
func (c *Client) CreateCustomer(ctx context.Context, s Session, customer *Customer) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"Customer"`
	}
	err := c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/customer", nil, customer, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// ── Compañía ──────────────────────────────────────────────────────────────────

// GetCompanyInfo devuelve los datos del tenant (país incluido).
func (c *Client) GetCompanyInfo(ctx context.Context, s Session) (*CompanyInfo, error) {
	var resp struct {
		CompanyInfo CompanyInfo `json:"CompanyInfo"`
	}
	err := c.do(ctx, s, http.MethodGet, "/v3/company/"+s.RealmID+"/companyinfo/"+s.RealmID, nil, nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.CompanyInfo, nil
}

// ── Facturas ──────────────────────────────────────────────────────────────────

// GetInvoice lee una factura por id. (nil, nil) si QuickBooks no la conoce.
func (c *Client) GetInvoice(ctx context.Context, s Session, id string) (*Invoice, error) {
	var resp struct {
		Invoice Invoice `json:"Invoice"`
	}
	err := c.do(ctx, s, http.MethodGet, "/v3/company/"+s.RealmID+"/invoice/"+url.PathEscape(id), nil, nil, &resp)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &resp.Invoice, nil
}

// CreateInvoice crea una factura.
func (c *Client) CreateInvoice(ctx context.Context, s Session, invoice *Invoice) (*Invoice, error) {
	var resp struct {
		Invoice Invoice `json:"Invoice"`
	}
	err := c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/invoice", nil, invoice, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

// DeleteInvoice borra una factura (operation=delete requiere id y SyncToken vigente).
func (c *Client) DeleteInvoice(ctx context.Context, s Session, id, syncToken string) error {
	q := url.Values{}
	q.Set("operation", "delete")
	body := map[string]string{"Id": id, "SyncToken": syncToken}
	return c.do(ctx, s, http.MethodPost, "/v3/company/"+s.RealmID+"/invoice", q, body, nil)
}
