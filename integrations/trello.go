package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/chxlky/trello-cards/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.trello.com/1"

	// raw error bodies at or over this length are left out of the message
	maxRawErrorBody = 200
)

var credentialParam = regexp.MustCompile(`([?&])(key|token)=[^&"\s]*`)

// RedactURL hides the key and token query values of a Trello URL.
func RedactURL(rawURL string) string {
	return credentialParam.ReplaceAllString(rawURL, "$1$2=***")
}

type TrelloClient struct {
	Client  *http.Client
	BaseURL string
}

func NewTrelloClient(baseURL string, timeout time.Duration) *TrelloClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &TrelloClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
	}
}

// endpoint builds an API URL for path with the credentials and any extra
// query parameters attached.
func (tc *TrelloClient) endpoint(path string, creds models.Credentials, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", creds.APIKey)
	query.Set("token", creds.Token)
	return tc.BaseURL + path + "?" + query.Encode()
}

// Request performs a single call and returns the raw JSON body.
// Failures are never retried.
func (tc *TrelloClient) Request(ctx context.Context, method, rawURL string, body any) (json.RawMessage, error) {
	redacted := RedactURL(rawURL)
	zap.L().Debug("Making Trello request", zap.String("method", method), zap.String("url", redacted))

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, redacted, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		zap.L().Error("Trello request failed", zap.String("url", redacted), zap.String("error", RedactURL(err.Error())))
		return nil, &models.TransportError{Method: method, URL: redacted, Err: redactedError{err}}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		// the status line arrived but the body did not, so there is no usable response
		zap.L().Error("Failed to read Trello response body", zap.String("url", redacted), zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &models.TransportError{Method: method, URL: redacted, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Error("Trello request returned non-success status",
			zap.String("url", redacted),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, &models.TransportError{
			Method:  method,
			URL:     redacted,
			Status:  resp.StatusCode,
			Message: errorMessage(respBody),
		}
	}

	if !json.Valid(respBody) {
		var probe any
		parseErr := json.Unmarshal(respBody, &probe)
		zap.L().Error("Failed to parse JSON response", zap.String("url", redacted), zap.ByteString("body", respBody))
		return nil, &models.ResponseFormatError{URL: redacted, Err: parseErr}
	}

	return json.RawMessage(respBody), nil
}

// errorMessage extracts upstream error text from a failed response body.
func errorMessage(body []byte) string {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		if len(body) > 0 && len(body) < maxRawErrorBody {
			return string(body)
		}
		return ""
	}
	fields, ok := parsed.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if v, ok := fields[key]; ok && v != nil && v != "" {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// getJSON issues a GET and decodes the body into out.
func (tc *TrelloClient) getJSON(ctx context.Context, rawURL string, out any) error {
	raw, err := tc.Request(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &models.ResponseFormatError{URL: RedactURL(rawURL), Err: err}
	}
	return nil
}

// redactedError keeps credentials out of net/http errors, which quote the
// full request URL.
type redactedError struct {
	err error
}

func (r redactedError) Error() string {
	return RedactURL(r.err.Error())
}

func (r redactedError) Unwrap() error {
	return r.err
}
