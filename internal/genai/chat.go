package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"genai-relay/pkg/models"

	"github.com/tidwall/sjson"
)

// modelNotFoundMarkers are the provider message fragments that identify a
// "model not found / not supported" failure. Matching is case-sensitive,
// mirroring the messages the provider actually emits.
var modelNotFoundMarkers = []string{
	"is not found",
	"not supported",
	"NOT_FOUND",
}

// isModelNotFound classifies whether a failure means the requested model is
// unavailable and a fallback model should be tried. Kept as a single
// function so the matching rule can be tested and swapped without touching
// orchestration.
func isModelNotFound(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	if perr.StatusCode == http.StatusNotFound {
		return true
	}
	for _, marker := range modelNotFoundMarkers {
		if strings.Contains(perr.Message, marker) {
			return true
		}
	}
	return false
}

// Chat relays a chat turn to the text provider. If the primary model is
// reported unavailable, the fixed fallback models are tried in order and the
// first success wins; when every model fails the last error is surfaced.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (models.CanonicalResult, error) {
	if !s.HasChatCredential() {
		return models.CanonicalResult{}, fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingCredential)
	}

	body, err := buildChatBody(req.History, req.Message)
	if err != nil {
		return models.CanonicalResult{}, err
	}

	primary := req.Model
	if primary == "" {
		primary = s.config.ChatModel
	}

	resp, err := s.generateContent(ctx, primary, body)
	if err == nil {
		return extractText(resp), nil
	}
	if !isModelNotFound(err) {
		return models.CanonicalResult{}, err
	}

	lastErr := err
	for _, fallback := range FallbackChatModels() {
		if fallback == primary {
			continue
		}
		log.Printf("chat model %q unavailable, trying %q", primary, fallback)
		resp, err = s.generateContent(ctx, fallback, body)
		if err == nil {
			return extractText(resp), nil
		}
		lastErr = err
	}
	return models.CanonicalResult{}, lastErr
}

// generateContent issues one generateContent call against the named model.
func (s *Service) generateContent(ctx context.Context, model string, body []byte) (ProviderResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", s.config.GenerativeBase, model)
	return s.invoke(ctx, http.MethodPost, withKey(endpoint, s.config.GeminiAPIKey), body)
}

// buildChatBody converts the generic history plus the new message into the
// provider's contents shape, then patches in generation defaults.
func buildChatBody(history []models.ChatTurn, message string) ([]byte, error) {
	contents := make([]map[string]any, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" || turn.Role == "model" {
			role = "model"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": []map[string]any{{"text": turn.Text}},
		})
	}
	contents = append(contents, map[string]any{
		"role":  "user",
		"parts": []map[string]any{{"text": message}},
	})

	body, err := json.Marshal(map[string]any{"contents": contents})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err = sjson.SetBytes(body, "generationConfig.temperature", 0.7)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "generationConfig.maxOutputTokens", 1024)
}
