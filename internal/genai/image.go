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

const (
	// maxPromptLen bounds the prompt sent to the image provider.
	maxPromptLen = 900
	// maxRewrittenPromptLen bounds the prompt produced by the rewrite step.
	maxRewrittenPromptLen = 220
)

// GenerateImage relays an image generation request. The prompt is
// whitespace-normalized and truncated before the first attempt; when no
// media comes back, the prompt is rewritten into a shorter, vendor-friendly
// form through a secondary text-generation call and synthesis is retried
// exactly once.
func (s *Service) GenerateImage(ctx context.Context, req models.ImageRequest) (models.CanonicalResult, error) {
	if !s.HasChatCredential() {
		return models.CanonicalResult{}, fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingCredential)
	}

	prompt := truncatePrompt(normalizeWhitespace(req.Prompt), maxPromptLen)

	body, err := buildImageBody(prompt, req.AspectRatio)
	if err != nil {
		return models.CanonicalResult{}, err
	}

	result, err := s.predictOnce(ctx, body)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrNoMediaReturned) {
		return models.CanonicalResult{}, err
	}

	rewritten := s.rewritePrompt(ctx, prompt)
	if rewritten == "" || rewritten == prompt {
		return models.CanonicalResult{}, err
	}

	log.Printf("no media returned, retrying once with rewritten prompt")
	body, patchErr := sjson.SetBytes(body, "instances.0.prompt", rewritten)
	if patchErr != nil {
		return models.CanonicalResult{}, err
	}
	return s.predictOnce(ctx, body)
}

// predictOnce issues a single prediction call and normalizes the result.
func (s *Service) predictOnce(ctx context.Context, body []byte) (models.CanonicalResult, error) {
	endpoint := fmt.Sprintf("%s/models/%s:predict", s.config.GenerativeBase, s.config.ImageModel)
	resp, err := s.invoke(ctx, http.MethodPost, withKey(endpoint, s.config.GeminiAPIKey), body)
	if err != nil {
		return models.CanonicalResult{}, err
	}
	return extractPrediction(resp)
}

// rewritePrompt asks the text provider for a shorter, vendor-friendly form
// of the prompt. Any failure yields "", which skips the retry.
func (s *Service) rewritePrompt(ctx context.Context, prompt string) string {
	instruction := "Rewrite the following image prompt so it is short, concrete and safe for an image generation service. " +
		"Keep it under 200 characters and respond with the rewritten prompt only.\n\n" + prompt

	body, err := buildChatBody(nil, instruction)
	if err != nil {
		return ""
	}
	resp, err := s.generateContent(ctx, s.config.ChatModel, body)
	if err != nil {
		return ""
	}

	text := extractText(resp).Text
	if text == NoReplySentinel {
		return ""
	}
	return truncatePrompt(normalizeWhitespace(text), maxRewrittenPromptLen)
}

func buildImageBody(prompt, aspectRatio string) ([]byte, error) {
	parameters := map[string]any{"sampleCount": 1}
	if aspectRatio != "" {
		parameters["aspectRatio"] = aspectRatio
	}
	body, err := json.Marshal(map[string]any{
		"instances":  []map[string]any{{"prompt": prompt}},
		"parameters": parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncatePrompt bounds a prompt to max runes without splitting a character.
func truncatePrompt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
