package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// DefaultToolkitURL is the Identity Toolkit v1 base URL.
const DefaultToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// ToolkitProvider implements [Provider] against the Firebase Identity Toolkit REST API.
//
// Sign-out never reaches the network: the ID token is dropped and subscribers are told.
type ToolkitProvider struct {
	notifier
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	tokenMu      sync.Mutex
	idToken      string
	refreshToken string
}

// ToolkitOpts configures a [ToolkitProvider].
type ToolkitOpts struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewToolkitProvider creates a provider for the Firebase project that owns opts.APIKey.
func NewToolkitProvider(opts ToolkitOpts) (*ToolkitProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: identity api_key is required for the firebase provider", shared.ErrMissingCredentials)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultToolkitURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &ToolkitProvider{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger.WithPrefix("identity"),
	}, nil
}

func (p *ToolkitProvider) Name() string { return "firebase" }

// Subscribe implements [Provider].
func (p *ToolkitProvider) Subscribe(fn Listener) func() { return p.subscribe(fn) }

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAccount calls accounts:signUp.
func (p *ToolkitProvider) CreateAccount(ctx context.Context, email, password string) (*models.Identity, error) {
	return p.passwordAuth(ctx, "accounts:signUp", email, password)
}

// VerifyCredentials calls accounts:signInWithPassword.
func (p *ToolkitProvider) VerifyCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	return p.passwordAuth(ctx, "accounts:signInWithPassword", email, password)
}

// EndSession drops the tokens and notifies subscribers.
func (p *ToolkitProvider) EndSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
	}
	p.tokenMu.Lock()
	p.idToken, p.refreshToken = "", ""
	p.tokenMu.Unlock()

	p.logger.Debug("signed out")
	p.publish(nil)
	return nil
}

// IDToken returns the ID token of the signed-in account, if any.
func (p *ToolkitProvider) IDToken() string {
	p.tokenMu.Lock()
	defer p.tokenMu.Unlock()
	return p.idToken
}

func (p *ToolkitProvider) passwordAuth(ctx context.Context, method, email, password string) (*models.Identity, error) {
	body := passwordRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}

	var resp tokenResponse
	if err := p.doRequest(ctx, method, body, &resp); err != nil {
		return nil, err
	}
	if resp.LocalID == "" {
		return nil, &Error{Code: CodeInternal, Message: "identity response has no account id", Err: shared.ErrMalformedResponse}
	}

	p.tokenMu.Lock()
	p.idToken, p.refreshToken = resp.IDToken, resp.RefreshToken
	p.tokenMu.Unlock()

	identity := &models.Identity{ID: resp.LocalID, Email: resp.Email}
	p.logger.Debug("authenticated", "method", method, "id", identity.ID)
	p.publish(identity)
	return identity, nil
}

// doRequest POSTs body as JSON to {baseURL}/{method}?key=... and decodes the response into result.
func (p *ToolkitProvider) doRequest(ctx context.Context, method string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	apiURL := p.baseURL + "/" + method + "?" + url.Values{"key": {p.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &Error{Code: CodeInternal, Message: err.Error(), Err: fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeInternal, Message: err.Error(), Err: fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseToolkitError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return &Error{Code: CodeInternal, Message: "failed to decode identity response", Err: fmt.Errorf("%w: %w", shared.ErrMalformedResponse, err)}
	}
	return nil
}

// parseToolkitError maps an error body such as {"error":{"code":400,"message":"EMAIL_EXISTS"}} to an [*Error].
//
// Messages may carry detail after " : ", e.g. "WEAK_PASSWORD : Password should be at least 6 characters".
func parseToolkitError(status int, data []byte) *Error {
	var body toolkitErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return &Error{
			Code:    CodeInternal,
			Message: fmt.Sprintf("identity service error: status %d", status),
			Err:     shared.ErrAPIRequest,
		}
	}

	code, detail, _ := strings.Cut(body.Error.Message, " : ")
	perr := NewError(strings.TrimSpace(code))
	if _, known := messages[perr.Code]; !known && detail != "" {
		perr.Message = detail
	}
	return perr
}
