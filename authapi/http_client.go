package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nommy-app/employee-session/securestore"
	"github.com/nommy-app/employee-session/users"
)

const (
	defaultTimeout = 30 * time.Second

	signInPath  = "/auth/employee/sign-in"
	mePath      = "/auth/me"
	refreshPath = "/auth/refresh"
)

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks JSON to the HR backend. Requests pass through a
// client-side limiter so a misbehaving caller cannot hammer the sign-in
// endpoint faster than a user could type.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	store      securestore.Store
	log        zerolog.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithLimiter replaces the outbound request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *HTTPClient) { c.limiter = l }
}

// WithStore lets the client attach the Employee header from the persisted
// employee id, the way the mobile app's request interceptor does.
func WithStore(store securestore.Store) Option {
	return func(c *HTTPClient) { c.store = store }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *HTTPClient) { c.log = log }
}

func NewHTTPClient(baseURL string, options ...Option) *HTTPClient {
	client := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5),
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	body, err := c.do(ctx, http.MethodPost, signInPath, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Token string      `json:"token"`
		User  *users.User `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &APIError{Message: "malformed sign-in response: " + err.Error()}
	}
	if payload.Token == "" {
		return nil, &APIError{Message: "sign-in response missing token"}
	}
	if err := validateUser(payload.User); err != nil {
		return nil, err
	}
	return &SignInResponse{Token: payload.Token, User: payload.User}, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*users.User, error) {
	body, err := c.do(ctx, http.MethodGet, mePath, token, nil)
	if err != nil {
		return nil, err
	}

	var user users.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &APIError{Message: "malformed user response: " + err.Error()}
	}
	if err := validateUser(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, token string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, refreshPath, token, nil)
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &APIError{Message: "malformed refresh response: " + err.Error()}
	}
	if payload.Token == "" {
		return "", &APIError{Message: "refresh response missing token"}
	}
	return payload.Token, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "[HTTPClient.do] limiter.Wait")
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[HTTPClient.do] marshal request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[HTTPClient.do] new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	c.attachEmployeeHeader(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrNetwork, err.Error())
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(raw, resp.StatusCode)}
	}
}

func (c *HTTPClient) attachEmployeeHeader(ctx context.Context, req *http.Request) {
	if c.store == nil {
		return
	}
	employeeID, err := c.store.Get(ctx, securestore.KeyEmployeeID)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading employee id for request header")
		return
	}
	if employeeID != "" {
		req.Header.Set("Employee", employeeID)
	}
}

// serverMessage pulls the "message" field out of an error body, falling back
// to the HTTP status text.
func serverMessage(raw []byte, statusCode int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strconv.Itoa(statusCode) + " " + http.StatusText(statusCode)
}

func validateUser(user *users.User) error {
	if user == nil {
		return &APIError{Message: "response missing user"}
	}
	if user.ID == 0 {
		return &APIError{Message: "user record missing id"}
	}
	if user.Email == "" {
		return &APIError{Message: "user record missing email"}
	}
	for i, employee := range user.Employees {
		if employee.ID == 0 {
			return &APIError{Message: "employee record " + strconv.Itoa(i) + " missing id"}
		}
	}
	return nil
}
