package genai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Inbound body schemas. Validation failures surface as InvalidInput so the
// front end always receives the standard JSON envelope.
var (
	chatRequestSchema = jsonschema.MustCompileString("chat-request.json", `{
		"type": "object",
		"required": ["message"],
		"properties": {
			"message": {"type": "string"},
			"model": {"type": "string"},
			"history": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"role": {"type": "string"},
						"text": {"type": "string"}
					}
				}
			}
		}
	}`)

	ttsRequestSchema = jsonschema.MustCompileString("tts-request.json", `{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string"},
			"languageCode": {"type": "string"},
			"lang": {"type": "string"},
			"gender": {"type": "string", "enum": ["FEMALE", "MALE", "female", "male", "NEUTRAL", ""]},
			"voiceType": {"type": "string"}
		}
	}`)

	imageRequestSchema = jsonschema.MustCompileString("image-request.json", `{
		"type": "object",
		"required": ["prompt"],
		"properties": {
			"prompt": {"type": "string"},
			"aspectRatio": {"type": "string"}
		}
	}`)
)

// validateBody checks raw against schema, mapping both JSON parse failures
// and schema violations to ErrInvalidInput.
func validateBody(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: request body is not valid JSON", ErrInvalidInput)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: request body failed validation", ErrInvalidInput)
	}
	return nil
}
