package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultBaseURL is the address of the hosted form service.
const DefaultBaseURL = "https://dynamic-form-generator-9rl7.onrender.com"

// DefaultTimeout bounds every remote call unless overridden.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Paths holds the endpoint path of each operation.
type Paths struct {
	CreateIdentity string
	FetchForm      string
	SubmitForm     string
}

// DefaultPaths returns the paths used by the hosted service.
func DefaultPaths() Paths {
	return Paths{
		CreateIdentity: "/create-user",
		FetchForm:      "/get-form",
		SubmitForm:     "/submit-form",
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithPaths overrides endpoint paths. Empty entries keep their default.
func WithPaths(paths Paths) Option {
	return func(c *Client) {
		if paths.CreateIdentity != "" {
			c.paths.CreateIdentity = paths.CreateIdentity
		}
		if paths.FetchForm != "" {
			c.paths.FetchForm = paths.FetchForm
		}
		if paths.SubmitForm != "" {
			c.paths.SubmitForm = paths.SubmitForm
		}
	}
}

// WithLogger sets the logger used to record failed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContract replaces the embedded response contract.
func WithContract(contract *Contract) Option {
	return func(c *Client) {
		if contract != nil {
			c.contract = contract
		}
	}
}

// Client talks to the remote form service.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	timeout  time.Duration
	paths    Paths
	logger   *slog.Logger
	contract *Contract
}

// New builds a client for the service at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("remote: base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		timeout: DefaultTimeout,
		paths:   DefaultPaths(),
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.contract == nil {
		contract, err := DefaultContract()
		if err != nil {
			return nil, err
		}
		c.contract = contract
	}
	return c, nil
}

type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateIdentity registers identity with the service.
func (c *Client) CreateIdentity(ctx context.Context, identity model.Identity) error {
	body, err := c.do(ctx, OpCreateIdentity, http.MethodPost, c.paths.CreateIdentity, nil, identity)
	if err != nil {
		return err
	}
	return c.requireSuccess(ctx, OpCreateIdentity, body)
}

// FetchForm loads the form schema assigned to rollNumber.
func (c *Client) FetchForm(ctx context.Context, rollNumber string) (model.FormSchema, error) {
	query := url.Values{"rollNumber": []string{rollNumber}}
	body, err := c.do(ctx, OpFetchForm, http.MethodGet, c.paths.FetchForm, query, nil)
	if err != nil {
		return model.FormSchema{}, err
	}

	var payload struct {
		Form *model.FormSchema `json:"form"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.FormSchema{}, c.fail(ctx, &Error{Op: OpFetchForm, Kind: KindMalformed, Err: err})
	}
	if payload.Form == nil {
		return model.FormSchema{}, c.fail(ctx, &Error{Op: OpFetchForm, Kind: KindMalformed, Err: errors.New("response has no form")})
	}
	if err := payload.Form.Validate(); err != nil {
		return model.FormSchema{}, c.fail(ctx, &Error{Op: OpFetchForm, Kind: KindMalformed, Err: err})
	}
	return *payload.Form, nil
}

// SubmitForm sends the collected values for rollNumber.
func (c *Client) SubmitForm(ctx context.Context, rollNumber string, values model.Values) error {
	if values == nil {
		values = model.Values{}
	}
	request := struct {
		RollNumber string       `json:"rollNumber"`
		FormData   model.Values `json:"formData"`
	}{RollNumber: rollNumber, FormData: values}

	body, err := c.do(ctx, OpSubmitForm, http.MethodPost, c.paths.SubmitForm, nil, request)
	if err != nil {
		return err
	}
	return c.requireSuccess(ctx, OpSubmitForm, body)
}

func (c *Client) requireSuccess(ctx context.Context, op Op, body []byte) error {
	var out outcome
	if err := json.Unmarshal(body, &out); err != nil {
		return c.fail(ctx, &Error{Op: op, Kind: KindMalformed, Err: err})
	}
	if !out.Success {
		return c.fail(ctx, &Error{Op: op, Kind: KindMalformed, Message: out.Message, Err: errors.New("success flag not set")})
	}
	return nil
}

// do performs the request and returns the body of a 2xx response that
// satisfies the contract.
func (c *Client) do(ctx context.Context, op Op, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, c.fail(ctx, &Error{Op: op, Kind: KindSetup, Err: err})
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, c.fail(ctx, &Error{Op: op, Kind: KindSetup, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, &Error{Op: op, Kind: KindUnreachable, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fail(ctx, &Error{Op: op, Kind: KindUnreachable, Status: resp.StatusCode, Err: err})
	}

	c.logger.DebugContext(ctx, "remote call",
		slog.String("op", string(op)),
		slog.String("method", method),
		slog.String("url", endpoint.Redacted()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(ctx, &Error{
			Op:      op,
			Kind:    KindServerRejected,
			Status:  resp.StatusCode,
			Message: problemMessage(body),
		})
	}

	if err := c.contract.ValidateResponse(op, body); err != nil {
		return nil, c.fail(ctx, &Error{Op: op, Kind: KindMalformed, Status: resp.StatusCode, Err: err})
	}
	return body, nil
}

func (c *Client) fail(ctx context.Context, err *Error) error {
	c.logger.WarnContext(ctx, "remote call failed",
		slog.String("op", string(err.Op)),
		slog.String("kind", err.Kind.String()),
		slog.Int("status", err.Status),
		slog.Any("error", err.Err),
	)
	return err
}

func problemMessage(body []byte) string {
	var problem struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &problem); err != nil {
		return ""
	}
	return strings.TrimSpace(problem.Message)
}
