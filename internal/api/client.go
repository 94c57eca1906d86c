// Package api is the client for the TradeVault backend: REST endpoints for
// trades, journal, brokers, and CSV import, plus the streaming AI endpoints.
//
// Every request except Ping carries the bearer credential. All persistence is
// server-side; the client treats responses as the authoritative state.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	apperrors "tradevault/internal/errors"
	"tradevault/internal/logging"
	"tradevault/internal/models"
)

// Client talks to the backend REST API.
type Client struct {
	http    *resty.Client
	stream  *resty.Client
	tokens  *TokenStore
	logger  zerolog.Logger
	timeout time.Duration

	// onSessionExpired runs at most once per process, on the first 401.
	// Guards against redirect loops when several in-flight requests all
	// come back unauthorized.
	onSessionExpired func()
	expired          atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSessionExpiredHandler sets the hook invoked on the first 401 response,
// after the stored credential has been cleared.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// WithTimeout overrides the per-request timeout. For streaming requests it
// bounds only the wait for response headers, never the body read.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.http.SetTimeout(d)
		c.stream.SetTransport(streamTransport(d))
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, tokens *TokenStore, opts ...Option) *Client {
	c := &Client{
		tokens:  tokens,
		logger:  zerolog.Nop(),
		timeout: 35 * time.Second,
	}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(c.timeout).
		SetHeader("Content-Type", "application/json")
	// Streaming requests go through a client with no overall deadline: an
	// insight stream stays open for as long as tokens keep arriving, and the
	// caller's context is the only way to cut it short. Connect and header
	// deadlines still apply so a dead server fails fast.
	c.stream = resty.New().
		SetBaseURL(baseURL).
		SetTransport(streamTransport(c.timeout)).
		SetHeader("Content-Type", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func streamTransport(headerTimeout time.Duration) *http.Transport {
	return &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Upgrade bool            `json:"upgrade"`
}

// do performs an authenticated request and decodes the envelope's data field
// into out (which may be nil for calls with no useful body).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()
	req := c.http.R().SetContext(ctx)
	if token := c.tokens.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	logging.LogAPICall(c.logger, method, path, time.Since(start), err)
	if err != nil {
		return c.mapTransportError(err)
	}
	return c.decode(resp.StatusCode(), resp.Body(), out)
}

// mapTransportError converts transport-level failures into the client's
// error taxonomy.
func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return apperrors.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrConnectionFailed, err.Error())
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// decode unpacks the response envelope, applying the cross-cutting auth and
// premium-gate contracts.
func (c *Client) decode(status int, body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		env = envelope{Error: fmt.Sprintf("HTTP %d", status)}
	}

	switch {
	case status == http.StatusUnauthorized:
		c.sessionExpired()
		return apperrors.ErrSessionExpired
	case status == http.StatusForbidden && env.Upgrade:
		return apperrors.ErrUpgradeRequired
	case status < 200 || status >= 300 || !env.Success:
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", status)
		}
		return apperrors.NewAPIError(status, msg, nil)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Wrap(err, "decoding response")
	}
	return nil
}

// sessionExpired clears the credential and fires the redirect hook exactly
// once per process.
func (c *Client) sessionExpired() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear stored credential")
	}
	if c.expired.CompareAndSwap(false, true) && c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// TradeFilter holds optional query parameters for listing trades.
type TradeFilter struct {
	Symbol    string `url:"symbol,omitempty"`
	AssetType string `url:"asset_type,omitempty"`
	Direction string `url:"direction,omitempty"`
	From      string `url:"from,omitempty"` // YYYY-MM-DD
	To        string `url:"to,omitempty"`
	Limit     int    `url:"limit,omitempty"`
}

// ListTrades fetches trades, optionally filtered.
func (c *Client) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	values, err := query.Values(filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "encoding trade filter")
	}
	path := "/trades"
	if qs := values.Encode(); qs != "" {
		path += "?" + qs
	}
	var trades []models.Trade
	if err := c.do(ctx, http.MethodGet, path, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// CreateTrade persists a new trade and returns it with the server-computed
// id and P&L.
func (c *Client) CreateTrade(ctx context.Context, in models.TradeInput) (*models.Trade, error) {
	var trade models.Trade
	if err := c.do(ctx, http.MethodPost, "/trades", in, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// UpdateTrade persists edits to an existing trade.
func (c *Client) UpdateTrade(ctx context.Context, id models.ID, in models.TradeInput) (*models.Trade, error) {
	var trade models.Trade
	if err := c.do(ctx, http.MethodPut, "/trades/"+string(id), in, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

// DeleteTrade removes a trade. A 404 is treated as success: the record is
// gone either way.
func (c *Client) DeleteTrade(ctx context.Context, id models.ID) error {
	err := c.do(ctx, http.MethodDelete, "/trades/"+string(id), nil, nil)
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// ListJournal fetches all journal entries.
func (c *Client) ListJournal(ctx context.Context) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := c.do(ctx, http.MethodGet, "/journal", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateJournal persists a new journal entry.
func (c *Client) CreateJournal(ctx context.Context, entryDate, content string) (*models.JournalEntry, error) {
	body := map[string]string{"entry_date": entryDate, "content": content}
	var entry models.JournalEntry
	if err := c.do(ctx, http.MethodPost, "/journal", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteJournal removes a journal entry.
func (c *Client) DeleteJournal(ctx context.Context, id models.ID) error {
	return c.do(ctx, http.MethodDelete, "/journal/"+string(id), nil, nil)
}

// PreviewCSV uploads a CSV for server-side parsing and returns the per-row
// validated preview. Nothing is persisted.
func (c *Client) PreviewCSV(ctx context.Context, fileName string, content io.Reader) (*models.CsvPreview, error) {
	start := time.Now()
	req := c.http.R().
		SetContext(ctx).
		SetFileReader("file", fileName, content)
	if token := c.tokens.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}

	resp, err := req.Post("/import/preview")
	logging.LogAPICall(c.logger, http.MethodPost, "/import/preview", time.Since(start), err)
	if err != nil {
		return nil, c.mapTransportError(err)
	}

	var preview models.CsvPreview
	if err := c.decode(resp.StatusCode(), resp.Body(), &preview); err != nil {
		return nil, err
	}
	preview.FileName = fileName
	return &preview, nil
}

// ConfirmImport persists the given rows and returns the imported count.
func (c *Client) ConfirmImport(ctx context.Context, rows []models.CsvRow) (int, error) {
	body := map[string]interface{}{"rows": rows}
	var result struct {
		Imported int `json:"imported"`
	}
	if err := c.do(ctx, http.MethodPost, "/import/confirm", body, &result); err != nil {
		return 0, err
	}
	return result.Imported, nil
}

// ListBrokers fetches all broker connections.
func (c *Client) ListBrokers(ctx context.Context) ([]models.BrokerConnection, error) {
	var brokers []models.BrokerConnection
	if err := c.do(ctx, http.MethodGet, "/brokers", nil, &brokers); err != nil {
		return nil, err
	}
	return brokers, nil
}

// AddBroker creates a broker connection. Credentials are write-only: the
// returned record never echoes them.
func (c *Client) AddBroker(ctx context.Context, creds models.BrokerCredentials) (*models.BrokerConnection, error) {
	var broker models.BrokerConnection
	if err := c.do(ctx, http.MethodPost, "/brokers", creds, &broker); err != nil {
		return nil, err
	}
	return &broker, nil
}

// DeleteBroker removes a broker connection.
func (c *Client) DeleteBroker(ctx context.Context, id models.ID) error {
	return c.do(ctx, http.MethodDelete, "/brokers/"+string(id), nil, nil)
}

// SyncBroker triggers a server-mediated sync and returns the count of newly
// imported trades. The server deduplicates; when the count is positive the
// caller should re-fetch the full trade list.
func (c *Client) SyncBroker(ctx context.Context, id models.ID) (int, error) {
	var result struct {
		Imported int `json:"imported"`
	}
	if err := c.do(ctx, http.MethodPost, "/brokers/"+string(id)+"/sync", nil, &result); err != nil {
		return 0, err
	}
	return result.Imported, nil
}

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var result struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return err
	}
	if result.Token == "" {
		return apperrors.NewAPIError(http.StatusOK, "login response missing token", nil)
	}
	c.expired.Store(false)
	return c.tokens.Save(result.Token)
}

// Ping hits the unauthenticated health endpoint, used to pre-warm a cold
// backend before the first real request.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return c.mapTransportError(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return apperrors.NewAPIError(resp.StatusCode(), "health check failed", nil)
	}
	return nil
}
