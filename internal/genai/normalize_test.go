package genai

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"genai-relay/pkg/models"

	"github.com/tidwall/gjson"
)

func parsedResponse(body string) ProviderResponse {
	return ProviderResponse{StatusCode: 200, Body: gjson.Parse(body), Raw: body}
}

func TestExtractTextConcatenatesParts(t *testing.T) {
	resp := parsedResponse(`{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"world"}]}}]}`)

	got := extractText(resp)
	if got.Text != "Hello, world" {
		t.Errorf("extractText() = %q, want %q", got.Text, "Hello, world")
	}
	if got.Kind != models.KindText {
		t.Errorf("Kind = %q, want %q", got.Kind, models.KindText)
	}
}

func TestExtractTextAcrossCandidates(t *testing.T) {
	resp := parsedResponse(`{"candidates":[
		{"content":{"parts":[{"text":"one "}]}},
		{"content":{"parts":[{"text":"two"}]}}
	]}`)

	if got := extractText(resp); got.Text != "one two" {
		t.Errorf("extractText() = %q, want %q", got.Text, "one two")
	}
}

func TestExtractTextNoContentReturnsSentinel(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{}`},
		{name: "empty candidates", body: `{"candidates":[]}`},
		{name: "parts without text", body: `{"candidates":[{"content":{"parts":[{"functionCall":{}}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractText(parsedResponse(tt.body))
			if got.Text != NoReplySentinel {
				t.Errorf("extractText() = %q, want sentinel", got.Text)
			}
		})
	}
}

func TestExtractInlineData(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("image-bytes"))

	tests := []struct {
		name string
		body string
		mime string
	}{
		{
			name: "camel case convention",
			body: `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"` + payload + `"}}]}}]}`,
			mime: "image/png",
		},
		{
			name: "snake case convention",
			body: `{"candidates":[{"content":{"parts":[{"inline_data":{"mime_type":"image/webp","data":"` + payload + `"}}]}}]}`,
			mime: "image/webp",
		},
		{
			name: "inline data after text part",
			body: `{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"` + payload + `"}}]}}]}`,
			mime: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractInlineData(parsedResponse(tt.body))
			if err != nil {
				t.Fatalf("extractInlineData() error = %v", err)
			}
			if string(got.Data) != "image-bytes" {
				t.Errorf("Data = %q, want %q", got.Data, "image-bytes")
			}
			if got.MIME != tt.mime {
				t.Errorf("MIME = %q, want %q", got.MIME, tt.mime)
			}
		})
	}
}

func TestExtractInlineDataAudioKind(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("audio-bytes"))
	body := `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"audio/mpeg","data":"` + payload + `"}}]}}]}`

	got, err := extractInlineData(parsedResponse(body))
	if err != nil {
		t.Fatalf("extractInlineData() error = %v", err)
	}
	if got.Kind != models.KindAudio {
		t.Errorf("Kind = %q, want %q", got.Kind, models.KindAudio)
	}
}

func TestExtractInlineDataNoMedia(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"only text"}]}}]}`

	_, err := extractInlineData(parsedResponse(body))
	if !errors.Is(err, ErrNoMediaReturned) {
		t.Errorf("extractInlineData() error = %v, want ErrNoMediaReturned", err)
	}
}

func TestExtractPredictionKnownFields(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	tests := []struct {
		name string
		body string
	}{
		{name: "bytesBase64Encoded", body: `{"predictions":[{"bytesBase64Encoded":"` + payload + `"}]}`},
		{name: "nested image field", body: `{"predictions":[{"image":{"bytesBase64Encoded":"` + payload + `"}}]}`},
		{name: "imageBytes", body: `{"predictions":[{"imageBytes":"` + payload + `"}]}`},
		{name: "b64Json", body: `{"predictions":[{"b64Json":"` + payload + `"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractPrediction(parsedResponse(tt.body))
			if err != nil {
				t.Fatalf("extractPrediction() error = %v", err)
			}
			if string(got.Data) != "png-bytes" {
				t.Errorf("Data = %q, want %q", got.Data, "png-bytes")
			}
		})
	}
}

// The long-string scan is best-effort: any string field longer than the
// threshold is accepted when no known field matches.
func TestExtractPredictionHeuristicScan(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("p", 900)))
	body := `{"predictions":[{"note":"short","blob":"` + payload + `"}]}`

	got, err := extractPrediction(parsedResponse(body))
	if err != nil {
		t.Fatalf("extractPrediction() error = %v", err)
	}
	if len(got.Data) != 900 {
		t.Errorf("Data length = %d, want 900", len(got.Data))
	}
}

func TestExtractPredictionNoMedia(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no predictions", body: `{}`},
		{name: "empty predictions", body: `{"predictions":[]}`},
		{name: "only short strings", body: `{"predictions":[{"note":"nothing here"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractPrediction(parsedResponse(tt.body))
			if !errors.Is(err, ErrNoMediaReturned) {
				t.Errorf("extractPrediction() error = %v, want ErrNoMediaReturned", err)
			}
		})
	}
}

func TestExtractPredictionMimeType(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	got, err := extractPrediction(parsedResponse(`{"predictions":[{"bytesBase64Encoded":"` + payload + `","mimeType":"image/jpeg"}]}`))
	if err != nil {
		t.Fatalf("extractPrediction() error = %v", err)
	}
	if got.MIME != "image/jpeg" {
		t.Errorf("MIME = %q, want %q", got.MIME, "image/jpeg")
	}

	got, err = extractPrediction(parsedResponse(`{"predictions":[{"bytesBase64Encoded":"` + payload + `"}]}`))
	if err != nil {
		t.Fatalf("extractPrediction() error = %v", err)
	}
	if got.MIME != "image/png" {
		t.Errorf("default MIME = %q, want %q", got.MIME, "image/png")
	}
}

func TestExtractAudioContent(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("mp3-bytes"))

	for _, field := range []string{"audioContent", "audio_content"} {
		t.Run(field, func(t *testing.T) {
			got, err := extractAudioContent(parsedResponse(`{"` + field + `":"` + payload + `"}`))
			if err != nil {
				t.Fatalf("extractAudioContent() error = %v", err)
			}
			if string(got.Data) != "mp3-bytes" {
				t.Errorf("Data = %q, want %q", got.Data, "mp3-bytes")
			}
			if got.MIME != "audio/mpeg" {
				t.Errorf("MIME = %q, want %q", got.MIME, "audio/mpeg")
			}
		})
	}

	_, err := extractAudioContent(parsedResponse(`{}`))
	if !errors.Is(err, ErrNoMediaReturned) {
		t.Errorf("extractAudioContent() error = %v, want ErrNoMediaReturned", err)
	}
}
