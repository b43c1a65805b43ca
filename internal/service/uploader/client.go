package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oshokin/screeps-uploader/internal/domain/module"
	"github.com/oshokin/screeps-uploader/internal/logger"
	"github.com/oshokin/screeps-uploader/internal/version"
)

const (
	// CodePath is the API path accepting code uploads.
	CodePath = "/api/user/code"
	// ContentType is sent with every upload body.
	ContentType = "application/json; charset=utf-8"
	// TokenHeader carries the API token.
	TokenHeader = "X-Token"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the decoded JSON value of a successful upload. Numbers are kept as json.Number.
type Result = any

// Client uploads modules to one Screeps server.
type Client struct {
	// endpoint is the absolute URL of the code API.
	endpoint string
	// token is sent in TokenHeader.
	token string
	// httpClient performs the request.
	httpClient Doer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

var (
	// errServerURLRequired is returned by New for an empty server URL.
	errServerURLRequired = errors.New("server url must be provided")
	// errTokenRequired is returned by New for an empty token.
	errTokenRequired = errors.New("token must be provided")
	// errTrailingData is returned when a response holds more than one JSON value.
	errTrailingData = errors.New("unexpected data after JSON value")
)

// New returns a client posting to serverURL + CodePath.
func New(serverURL, token string, opts ...Option) (*Client, error) {
	if serverURL == "" {
		return nil, errServerURLRequired
	}

	if token == "" {
		return nil, errTokenRequired
	}

	endpoint, err := url.JoinPath(serverURL, CodePath)
	if err != nil {
		return nil, fmt.Errorf("build endpoint url: %w", err)
	}

	client := &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Endpoint returns the URL uploads are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upload posts modules to the default branch and returns the decoded response.
func (c *Client) Upload(ctx context.Context, modules module.Collection) (Result, error) {
	body, err := json.Marshal(module.NewUploadRequest(modules))
	if err != nil {
		return nil, fmt.Errorf("encode upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}

	req.Header.Set("Content-Type", ContentType)
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("User-Agent", version.UserAgent())

	logger.InfoKV(ctx, "Uploading modules",
		"url", c.endpoint,
		"branch", module.DefaultBranch,
		"modules", len(modules),
		"bytes", len(body))

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, &UploadError{
			StatusCode: response.StatusCode,
			Reason:     reasonPhrase(response),
			Body:       string(raw),
		}
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return result, nil
}

// decodeResult parses exactly one JSON value of any type.
func decodeResult(raw []byte) (Result, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var result Result
	if err := decoder.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return result, nil
}

// reasonPhrase extracts "Forbidden" from a "403 Forbidden" status line.
func reasonPhrase(response *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(response.Status, strconv.Itoa(response.StatusCode)))
	if reason == "" {
		reason = http.StatusText(response.StatusCode)
	}

	return reason
}
