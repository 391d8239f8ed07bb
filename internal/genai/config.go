package genai

import (
	"os"
	"sync"

	"genai-relay/pkg/utils"
)

const (
	// DefaultGenerativeBase is the text/image provider API base.
	DefaultGenerativeBase = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultTTSBase is the speech-synthesis provider API base.
	DefaultTTSBase = "https://texttospeech.googleapis.com/v1"

	// DefaultChatModel is used when neither the request nor the environment
	// names a model.
	DefaultChatModel = "gemini-1.5-flash"
	// DefaultImageModel is the image generation model.
	DefaultImageModel = "imagen-3.0-generate-001"
)

// Config centralizes all relay configuration. Values come from environment
// variables; the endpoint bases are overridable so tests can point the relay
// at local servers.
type Config struct {
	// GeminiAPIKey authenticates chat and image calls.
	GeminiAPIKey string
	// TTSAPIKey authenticates speech-synthesis calls. Falls back to
	// GeminiAPIKey when unset, since both live behind the same key type.
	TTSAPIKey string
	// ChatModel is the primary chat model identifier.
	ChatModel string
	// ImageModel is the image generation model identifier.
	ImageModel string
	// GenerativeBase is the URL prefix for chat and image endpoints.
	GenerativeBase string
	// TTSBase is the URL prefix for synthesis and voice-listing endpoints.
	TTSBase string
	// Port is the HTTP listen port.
	Port string
}

var (
	config     *Config
	configOnce sync.Once
)

// GetConfig returns the singleton relay configuration, loading it from the
// environment on first call.
func GetConfig() *Config {
	configOnce.Do(func() {
		ttsKey := os.Getenv("TTS_API_KEY")
		if ttsKey == "" {
			ttsKey = os.Getenv("GEMINI_API_KEY")
		}

		config = &Config{
			GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
			TTSAPIKey:      ttsKey,
			ChatModel:      utils.GetEnvWithDefault("CHAT_MODEL", DefaultChatModel),
			ImageModel:     utils.GetEnvWithDefault("IMAGE_MODEL", DefaultImageModel),
			GenerativeBase: utils.GetEnvWithDefault("GENERATIVE_API_BASE", DefaultGenerativeBase),
			TTSBase:        utils.GetEnvWithDefault("TTS_API_BASE", DefaultTTSBase),
			Port:           utils.GetEnvWithDefault("PORT", "8080"),
		}
	})
	return config
}

// FallbackChatModels is the fixed, ordered list of models tried when the
// primary model is reported unavailable. The list stays at two entries so a
// chat call never makes more than three outbound attempts.
func FallbackChatModels() []string {
	return []string{
		"gemini-1.5-flash-8b",
		"gemini-1.5-pro",
	}
}
