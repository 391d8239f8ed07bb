package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"genai-relay/pkg/models"
	"genai-relay/pkg/utils"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// chatRateLimit is the per-client admission cap for /chat.
	chatRateLimit = 20
	// rateWindow is the trailing window the cap applies to.
	rateWindow = time.Minute
	// requestTimeout is the per-request deadline propagated to every
	// outbound call made on behalf of one inbound request.
	requestTimeout = 25 * time.Second
)

// ServerState holds the relay's HTTP-facing state: the provider service and
// the chat rate limiter. Both are owned here and injected, never package
// globals.
type ServerState struct {
	Service *Service
	Limiter *utils.RateLimiter
}

// NewServerState creates the relay server state from the environment
// configuration.
func NewServerState() *ServerState {
	return &ServerState{
		Service: NewService(),
		Limiter: utils.NewRateLimiter(chatRateLimit, rateWindow),
	}
}

// RegisterHandlers registers the relay endpoints with a router.
func (s *ServerState) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/chat", s.HandleChat)
	mux.HandleFunc("/tts", s.HandleTTS)
	mux.HandleFunc("/image", s.HandleImage)
}

// HandleChat handles POST /chat.
func (s *ServerState) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if !s.Limiter.Admit(utils.ClientID(r)) {
		writeFailure(w, ErrRateLimited)
		return
	}

	var req models.ChatRequest
	if !decodeBody(w, r, chatRequestSchema, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Please provide a message.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.Service.Chat(ctx, req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reply": result.Text})
}

// HandleTTS handles POST /tts.
func (s *ServerState) HandleTTS(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req models.TTSRequest
	if !decodeBody(w, r, ttsRequestSchema, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Please provide text to synthesize.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.Service.Synthesize(ctx, req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"audioContent": base64.StdEncoding.EncodeToString(result.Data),
		"mimeType":     result.MIME,
	})
}

// HandleImage handles POST /image.
func (s *ServerState) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req models.ImageRequest
	if !decodeBody(w, r, imageRequestSchema, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Please provide an image prompt.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.Service.GenerateImage(ctx, req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", result.MIME, base64.StdEncoding.EncodeToString(result.Data))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "imageDataUrl": dataURL})
}

// requirePost rejects non-POST requests with the standard envelope.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// decodeBody reads, schema-validates and unmarshals the request body into
// dst, writing the failure envelope itself when anything is off.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) bool {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading request body")
		return false
	}
	r.Body.Close()

	if err := validateBody(schema, raw); err != nil {
		writeFailure(w, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeFailure converts a failure from the relay core into the JSON envelope
// the front end expects; it never lets an error propagate as an unparseable
// body.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, failureStatus(err), failureMessage(err))
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrNoMediaReturned):
		// A valid terminal outcome for the request, not a transport error.
		return http.StatusOK
	default:
		return http.StatusBadGateway
	}
}

func failureMessage(err error) string {
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return "The provider returned an unreadable response. Please try again."
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return "The provider rejected the request: " + perr.Message
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return "The provider took too long to respond. Please try again."
	case errors.Is(err, ErrNoMediaReturned):
		return "No media was returned for this request. Try a different prompt."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a minute and try again."
	default:
		return err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Connection likely closed by client.
		return
	}
}
