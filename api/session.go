// Package api implements the low-level CleverTouch cloud protocol: the
// OpenID token exchange and the form-encoded vendor calls under /api/v0.1/.
package api

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	apiLang  = "en_GB"
	apiPath  = "/api/v0.1/"
	clientID = "app-front"

	defaultHost         = "e3.lvi.eu"
	defaultManufacturer = "purmo"

	// Fallback token lifetimes when the server omits expires_in. The
	// password grant historically returns short-lived tokens, the refresh
	// grant longer-lived ones.
	passwordGrantLifetime = 300 * time.Second
	refreshGrantLifetime  = 3600 * time.Second

	// Legacy tokens from human/user/auth/ carry no expiry at all.
	legacyTokenLifetime = 24 * time.Hour

	// Vendor status codes. Reads report 1 on success, accepted writes 8.
	statusReadOK  = 1
	statusWriteOK = 8

	writeContext    = "1"
	writePeremption = "15000"
)

// Result is a parsed API response envelope.
type Result struct {
	Status     Status
	Data       json.RawMessage
	Parameters json.RawMessage
}

// Session owns the credentials and tokens for one account and performs
// authenticated calls against the cloud API. Tokens are only mutated by
// Authenticate, AuthenticateLegacy and the refresh exchange; reads never
// touch them. A Session is safe for concurrent use.
type Session struct {
	tokenURL string
	baseURL  string

	httpClient *http.Client
	ownsClient bool
	logger     *slog.Logger

	closeOnce sync.Once

	mu           sync.RWMutex
	email        string
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewSession creates a session against the default cloud host. Either or
// both arguments may be empty: provide a stored refresh token to resume a
// previous session, or authenticate with a password later.
func NewSession(email, refreshToken string) *Session {
	return NewSessionWithHost(email, refreshToken, defaultHost, defaultManufacturer)
}

// NewSessionWithHost creates a session against a specific vendor host and
// manufacturer realm.
func NewSessionWithHost(email, refreshToken, host, manufacturer string) *Session {
	tokenURL := fmt.Sprintf(
		"https://auth.%s/realms/%s/protocol/openid-connect/token", host, manufacturer,
	)
	return NewSessionWithURLs(email, refreshToken, tokenURL, "https://"+host+apiPath)
}

// NewSessionWithURLs creates a session with explicit token and API base
// URLs, for tests and non-standard deployments.
func NewSessionWithURLs(email, refreshToken, tokenURL, baseURL string) *Session {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Session{
		tokenURL:     tokenURL,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		ownsClient:   true,
		logger:       slog.Default(),
		email:        email,
		refreshToken: refreshToken,
	}
}

// SetHTTPClient replaces the transport with a caller-owned client. Close
// will not release a client provided this way.
func (s *Session) SetHTTPClient(c *http.Client) {
	s.httpClient = c
	s.ownsClient = false
}

func (s *Session) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Email returns the account email, either as configured or as recovered
// from the access token.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// RefreshToken returns the current refresh token so callers can persist it
// for later sessions.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Close releases the transport. It is safe to call more than once and
// without any prior call having been made.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.ownsClient {
			s.httpClient.CloseIdleConnections()
		}
	})
}

// Authenticate performs a full password credential exchange, regardless of
// any token the session already holds. On success the session stores the
// new access/refresh token pair and expiry.
func (s *Session) Authenticate(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", clientID)
	form.Set("username", email)
	form.Set("password", password)

	s.logger.Debug("authenticating", "token_url", s.tokenURL, "email", email)

	token, err := s.requestToken(ctx, form)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.email = email
	s.storeTokenLocked(token, passwordGrantLifetime)
	s.mu.Unlock()
	return nil
}

// AuthenticateLegacy performs the pre-OpenID credential exchange used by
// older deployments: the password is sent as a salted md5 digest to the
// human/user/auth/ endpoint. The returned token has no refresh companion.
func (s *Session) AuthenticateLegacy(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", legacyPasswordHash(password))
	form.Set("lang", apiLang)

	endpoint := s.baseURL + "human/user/auth/"
	result, err := s.postForm(ctx, endpoint, form, "")
	if err != nil {
		return err
	}
	if result.Status.Code != statusReadOK {
		return &AuthError{Reason: result.Status.String()}
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil || data.Token == "" {
		return fmt.Errorf("%w: auth response without token", ErrMalformed)
	}

	s.mu.Lock()
	s.email = email
	s.accessToken = data.Token
	s.refreshToken = ""
	s.expiresAt = time.Now().Add(legacyTokenLifetime)
	s.mu.Unlock()
	return nil
}

// legacySalt is appended to passwords before hashing, matching the vendor's
// original web client.
const legacySalt = "e3"

func legacyPasswordHash(password string) string {
	sum := md5.Sum([]byte(password + legacySalt))
	return hex.EncodeToString(sum[:])
}

// Refresh forces a refresh-token exchange regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.refreshLocked(ctx)
	return err
}

// ensureValidToken refreshes the access token if it has expired, returning
// a token that is valid at the time of the check. The double-checked lock
// coalesces concurrent refreshes into a single exchange.
func (s *Session) ensureValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (string, error) {
	if s.refreshToken == "" {
		return "", &AuthError{Reason: "no refresh token stored; cannot refresh"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", clientID)
	form.Set("refresh_token", s.refreshToken)

	token, err := s.requestToken(ctx, form)
	if err != nil {
		return "", err
	}

	s.storeTokenLocked(token, refreshGrantLifetime)
	s.logger.Debug("access token refreshed", "expires_at", s.expiresAt)
	return s.accessToken, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (s *Session) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectError{URL: s.tokenURL, Err: err}
	}
	defer resp.Body.Close()

	// Any non-OK status from the token endpoint is an authentication
	// failure as far as callers are concerned.
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		return nil, &AuthError{Reason: fmt.Sprintf("token endpoint rejected the credentials (%d)", resp.StatusCode)}
	default:
		return nil, &AuthError{Reason: fmt.Sprintf("token endpoint returned %d", resp.StatusCode)}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", ErrMalformed, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response without access token", ErrMalformed)
	}
	return &token, nil
}

func (s *Session) storeTokenLocked(token *tokenResponse, fallback time.Duration) {
	s.accessToken = token.AccessToken
	// Keep the stored refresh token when the response omits one, so a
	// session is never stranded by a partial token response.
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}

	lifetime := fallback
	if token.ExpiresIn > 0 {
		lifetime = time.Duration(token.ExpiresIn) * time.Second
	}
	s.expiresAt = time.Now().Add(lifetime)

	// A session restored from a stored refresh token alone has no email,
	// which the user-read call needs. Recover it from the token claims.
	if s.email == "" {
		if email, err := emailFromToken(token.AccessToken); err == nil {
			s.email = email
		}
	}
}

// emailFromToken reads the email claim from the Keycloak access token. The
// signature is not verified; the token is inspected, never trusted.
func emailFromToken(accessToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return "", err
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", errors.New("no email claim in access token")
	}
	return email, nil
}

// ReadUserData reads the account user data, including the home summaries.
func (s *Session) ReadUserData(ctx context.Context) (json.RawMessage, error) {
	// A session restored from a stored refresh token alone learns its email
	// from the token claims, so refresh before requiring one.
	if _, err := s.ensureValidToken(ctx); err != nil {
		return nil, err
	}

	email := s.Email()
	if email == "" {
		return nil, &AuthError{Reason: "no account email known"}
	}

	form := url.Values{}
	form.Set("email", email)

	result, err := s.read(ctx, "human/user/read/", form)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// ReadHomeData reads the full state of one home, devices included.
func (s *Session) ReadHomeData(ctx context.Context, homeID string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("smarthome_id", homeID)

	result, err := s.read(ctx, "human/smarthome/read/", form)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// WriteQuery pushes a device mutation query. The query keys are vendor
// field names; each entry becomes a query[<field>] form parameter.
func (s *Session) WriteQuery(ctx context.Context, homeID string, query map[string]string) error {
	form := url.Values{}
	form.Set("smarthome_id", homeID)
	form.Set("context", writeContext)
	form.Set("peremption", writePeremption)
	for key, value := range query {
		form.Set(fmt.Sprintf("query[%s]", key), value)
	}

	result, err := s.post(ctx, "human/query/push/", form)
	if err != nil {
		return err
	}
	if result.Status.Code != statusWriteOK {
		return &CallError{Endpoint: "human/query/push/", Status: result.Status}
	}
	return nil
}

func (s *Session) read(ctx context.Context, endpoint string, form url.Values) (*Result, error) {
	result, err := s.post(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}
	if result.Status.Code != statusReadOK {
		return nil, &CallError{Endpoint: endpoint, Status: result.Status}
	}
	return result, nil
}

// post makes an authenticated API request, refreshing the access token
// first if it has expired.
func (s *Session) post(ctx context.Context, endpoint string, form url.Values) (*Result, error) {
	token, err := s.ensureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.postForm(ctx, s.baseURL+strings.TrimPrefix(endpoint, "/"), form, token)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("api call completed", "endpoint", endpoint, "status", result.Status.String())
	return result, nil
}

func (s *Session) postForm(ctx context.Context, u string, form url.Values, token string) (*Result, error) {
	requestID := uuid.NewString()
	encoded := form.Encode()

	var body []byte
	var statusCode int
	err := withRetry(ctx, defaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Request-Id", requestID)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return &ConnectError{URL: u, Err: err}
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return &ConnectError{URL: u, Err: err}
		}

		if isRetryableStatus(resp.StatusCode) {
			return &ConnectError{URL: u, Err: fmt.Errorf("status %d (retryable)", resp.StatusCode)}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("api request failed", "url", u, "request_id", requestID, "error", err)
		return nil, err
	}
	if statusCode != http.StatusOK {
		return nil, &ConnectError{URL: u, Err: fmt.Errorf("status %d", statusCode)}
	}

	return parseEnvelope(body)
}

func parseEnvelope(body []byte) (*Result, error) {
	var envelope struct {
		Code *struct {
			Code  any    `json:"code"`
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"code"`
		Data       json.RawMessage `json:"data"`
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if envelope.Code == nil || envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing code or data", ErrMalformed)
	}

	code, err := statusCodeOf(envelope.Code.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed status: %v", ErrMalformed, err)
	}

	return &Result{
		Status:     Status{Code: code, Key: envelope.Code.Key, Value: envelope.Code.Value},
		Data:       envelope.Data,
		Parameters: envelope.Parameters,
	}, nil
}

// statusCodeOf copes with the vendor sending status codes as either
// strings or numbers.
func statusCodeOf(v any) (int, error) {
	switch n := v.(type) {
	case string:
		return strconv.Atoi(n)
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("status code %v is neither string nor number", v)
}
