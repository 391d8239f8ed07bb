package genai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"genai-relay/pkg/models"

	"github.com/tidwall/gjson"
)

// NoReplySentinel is returned as the chat reply when a response parses fine
// but no candidate carries any text. An empty turn is a valid terminal
// outcome for the provider, not an error.
const NoReplySentinel = "I couldn't come up with a response. Please try again."

// predictionFieldProbes are the known field names carrying the encoded image
// payload in batch-style prediction responses, in priority order.
var predictionFieldProbes = []string{
	"bytesBase64Encoded",
	"image.bytesBase64Encoded",
	"imageBytes",
	"b64Json",
}

// predictionHeuristicMinLen is the best-effort threshold for the last-resort
// prediction scan: the first string field longer than this is accepted as
// the encoded payload. Not a contract; see extractPrediction.
const predictionHeuristicMinLen = 1000

// extractText concatenates all text fragments found along the provider's
// candidate paths (candidates[].content.parts[].text), in document order.
func extractText(resp ProviderResponse) models.CanonicalResult {
	var sb strings.Builder
	for _, candidate := range resp.Body.Get("candidates").Array() {
		for _, part := range candidate.Get("content.parts").Array() {
			if text := part.Get("text"); text.Exists() {
				sb.WriteString(text.String())
			}
		}
	}

	reply := sb.String()
	if reply == "" {
		reply = NoReplySentinel
	}
	return models.CanonicalResult{Kind: models.KindText, Text: reply}
}

// extractInlineData scans candidate parts for inline media under either of
// the two field naming conventions the provider library may emit, taking the
// first match.
func extractInlineData(resp ProviderResponse) (models.CanonicalResult, error) {
	for _, candidate := range resp.Body.Get("candidates").Array() {
		for _, part := range candidate.Get("content.parts").Array() {
			inline := part.Get("inlineData")
			if !inline.Exists() {
				inline = part.Get("inline_data")
			}
			if !inline.Exists() {
				continue
			}

			mime := inline.Get("mimeType").String()
			if mime == "" {
				mime = inline.Get("mime_type").String()
			}

			data, err := base64.StdEncoding.DecodeString(inline.Get("data").String())
			if err != nil {
				return models.CanonicalResult{}, fmt.Errorf("failed to decode inline media: %w", err)
			}

			kind := models.KindImage
			if strings.HasPrefix(mime, "audio/") {
				kind = models.KindAudio
			}
			return models.CanonicalResult{Kind: kind, Data: data, MIME: mime}, nil
		}
	}
	return models.CanonicalResult{}, ErrNoMediaReturned
}

// extractPrediction pulls the encoded image payload out of a batch-style
// predictions response. Known field names are probed in priority order; if
// none match, every string field of the first prediction is scanned and the
// first one longer than predictionHeuristicMinLen is accepted. The scan is
// explicitly best-effort.
func extractPrediction(resp ProviderResponse) (models.CanonicalResult, error) {
	prediction := resp.Body.Get("predictions.0")
	if !prediction.Exists() {
		return models.CanonicalResult{}, ErrNoMediaReturned
	}

	encoded := ""
	for _, probe := range predictionFieldProbes {
		if field := prediction.Get(probe); field.Type == gjson.String && field.String() != "" {
			encoded = field.String()
			break
		}
	}

	if encoded == "" {
		prediction.ForEach(func(_, value gjson.Result) bool {
			if value.Type == gjson.String && len(value.String()) > predictionHeuristicMinLen {
				encoded = value.String()
				return false
			}
			return true
		})
	}

	if encoded == "" {
		return models.CanonicalResult{}, ErrNoMediaReturned
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.CanonicalResult{}, fmt.Errorf("failed to decode image payload: %w", err)
	}

	mime := prediction.Get("mimeType").String()
	if mime == "" {
		mime = "image/png"
	}
	return models.CanonicalResult{Kind: models.KindImage, Data: data, MIME: mime}, nil
}

// extractAudioContent pulls the base64 audio payload from a speech-synthesis
// response, accepting both field naming conventions.
func extractAudioContent(resp ProviderResponse) (models.CanonicalResult, error) {
	audio := resp.Body.Get("audioContent")
	if !audio.Exists() {
		audio = resp.Body.Get("audio_content")
	}
	if !audio.Exists() || audio.String() == "" {
		return models.CanonicalResult{}, ErrNoMediaReturned
	}

	data, err := base64.StdEncoding.DecodeString(audio.String())
	if err != nil {
		return models.CanonicalResult{}, fmt.Errorf("failed to decode audio payload: %w", err)
	}
	return models.CanonicalResult{Kind: models.KindAudio, Data: data, MIME: "audio/mpeg"}, nil
}
