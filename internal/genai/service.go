package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"genai-relay/pkg/models"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ProviderResponse is the parsed form of one provider reply. It is ephemeral
// and discarded after normalization.
type ProviderResponse struct {
	StatusCode int
	// Body is the parsed JSON tree.
	Body gjson.Result
	// Raw is the response text Body was parsed from.
	Raw string
}

// Service issues outbound requests to the generative-AI providers and owns
// the process-wide voice catalog cache.
type Service struct {
	config     *Config
	httpClient *http.Client

	voiceMu sync.Mutex
	voices  *models.VoiceCatalog

	// now is replaceable in tests.
	now func() time.Time
}

// NewService creates a relay service using the environment configuration.
func NewService() *Service {
	return newService(GetConfig())
}

func newService(cfg *Config) *Service {
	return &Service{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// GetConfig returns the service's configuration.
func (s *Service) GetConfig() *Config {
	return s.config
}

// HasChatCredential reports whether the text/image provider key is set.
func (s *Service) HasChatCredential() bool {
	return s.config.GeminiAPIKey != ""
}

// HasTTSCredential reports whether the speech provider key is set.
func (s *Service) HasTTSCredential() bool {
	return s.config.TTSAPIKey != ""
}

// invoke sends one request to a provider endpoint and parses the reply.
// The body is always read as text first and never assumed to be JSON.
// There are no retries at this layer; substituting alternate parameters on
// failure is the orchestrators' responsibility.
func (s *Service) invoke(ctx context.Context, method, endpoint string, body []byte) (ProviderResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProviderResponse{}, ErrTimeout
		}
		return ProviderResponse{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProviderResponse{}, ErrTimeout
		}
		return ProviderResponse{}, fmt.Errorf("failed to read provider response: %w", err)
	}

	if !json.Valid(raw) {
		return ProviderResponse{}, &MalformedResponseError{
			StatusCode: resp.StatusCode,
			Prefix:     truncateRaw(string(raw)),
		}
	}

	parsed := gjson.ParseBytes(raw)
	errField := parsed.Get("error")

	if (resp.StatusCode < 200 || resp.StatusCode > 299) || errField.Exists() {
		message := errField.Get("message").String()
		if message == "" {
			message = errField.Get("status").String()
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		status := resp.StatusCode
		if code := errField.Get("code"); code.Exists() && code.Int() != 0 {
			status = int(code.Int())
		}
		return ProviderResponse{}, &ProviderError{StatusCode: status, Message: message}
	}

	return ProviderResponse{
		StatusCode: resp.StatusCode,
		Body:       parsed,
		Raw:        string(raw),
	}, nil
}

// withKey appends the provider API key as a query parameter.
func withKey(endpoint, key string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(key)
}
