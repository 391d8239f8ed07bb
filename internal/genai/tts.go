package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"genai-relay/pkg/models"
)

// voiceCacheTTL bounds how long a voice catalog snapshot is served before a
// fresh listing call is made.
const voiceCacheTTL = time.Hour

// premiumVoiceMarkers identify the provider's higher-tier voice families by
// name.
var premiumVoiceMarkers = []string{"Neural2", "Wavenet", "Studio"}

func isPremiumVoice(name string) bool {
	for _, marker := range premiumVoiceMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Synthesize relays a text-to-speech request. It selects an explicit voice
// from the cached catalog; if synthesis with that voice fails it retries
// exactly once with the name omitted so the provider auto-selects.
func (s *Service) Synthesize(ctx context.Context, req models.TTSRequest) (models.CanonicalResult, error) {
	if !s.HasTTSCredential() {
		return models.CanonicalResult{}, fmt.Errorf("%w: set TTS_API_KEY", ErrMissingCredential)
	}

	lang := req.Language()
	if lang == "" {
		lang = "en-US"
	}
	gender := strings.ToUpper(req.Gender)
	if gender == "" {
		gender = "FEMALE"
	}

	voices, err := s.voiceList(ctx)
	if err != nil {
		// Selection degrades to provider auto-selection; synthesis itself
		// may still succeed.
		log.Printf("voice listing failed, using provider auto-selection: %v", err)
	}
	name := chooseVoice(voices, lang, gender, req.VoiceType)

	result, err := s.synthesizeOnce(ctx, req.Text, lang, gender, name)
	if err == nil {
		return result, nil
	}
	if name != "" {
		log.Printf("synthesis with voice %q failed, retrying with auto-selection: %v", name, err)
		if result, retryErr := s.synthesizeOnce(ctx, req.Text, lang, gender, ""); retryErr == nil {
			return result, nil
		} else {
			err = retryErr
		}
	}
	return models.CanonicalResult{}, fmt.Errorf("speech synthesis failed for language %q gender %q: %w", lang, gender, err)
}

// synthesizeOnce issues a single synthesis call, with or without an explicit
// voice name.
func (s *Service) synthesizeOnce(ctx context.Context, text, lang, gender, name string) (models.CanonicalResult, error) {
	voice := map[string]any{
		"languageCode": lang,
		"ssmlGender":   gender,
	}
	if name != "" {
		voice["name"] = name
	}

	body, err := json.Marshal(map[string]any{
		"input":       map[string]any{"text": text},
		"voice":       voice,
		"audioConfig": map[string]any{"audioEncoding": "MP3"},
	})
	if err != nil {
		return models.CanonicalResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := s.config.TTSBase + "/text:synthesize"
	resp, err := s.invoke(ctx, http.MethodPost, withKey(endpoint, s.config.TTSAPIKey), body)
	if err != nil {
		return models.CanonicalResult{}, err
	}
	return extractAudioContent(resp)
}

// voiceList returns the provider's voice catalog, serving the cached
// snapshot while it is fresh. The snapshot is replaced wholesale, never
// merged, and is stale strictly after the TTL elapses.
func (s *Service) voiceList(ctx context.Context) ([]models.VoiceDescriptor, error) {
	s.voiceMu.Lock()
	defer s.voiceMu.Unlock()

	if s.voices != nil && s.now().Sub(s.voices.FetchedAt) <= voiceCacheTTL {
		return s.voices.Voices, nil
	}

	endpoint := s.config.TTSBase + "/voices"
	resp, err := s.invoke(ctx, http.MethodGet, withKey(endpoint, s.config.TTSAPIKey), nil)
	if err != nil {
		return nil, err
	}

	var voices []models.VoiceDescriptor
	for _, v := range resp.Body.Get("voices").Array() {
		name := v.Get("name").String()
		voices = append(voices, models.VoiceDescriptor{
			Name:         name,
			LanguageCode: v.Get("languageCodes.0").String(),
			Gender:       v.Get("ssmlGender").String(),
			Premium:      isPremiumVoice(name),
		})
	}

	s.voices = &models.VoiceCatalog{Voices: voices, FetchedAt: s.now()}
	return voices, nil
}

// chooseVoice picks a voice name for the requested language and gender.
// Preference order: a voice in the requested tier for language+gender, a
// premium voice for language+gender, the first language+gender match, the
// first language match, the first voice at all. Returns "" when the catalog
// is empty, which leaves selection to the provider.
func chooseVoice(voices []models.VoiceDescriptor, lang, gender, voiceType string) string {
	var tierMarkers []string
	switch strings.ToLower(voiceType) {
	case "neural":
		tierMarkers = premiumVoiceMarkers
	case "standard":
		tierMarkers = []string{"Standard"}
	}

	matchesTier := func(name string) bool {
		for _, marker := range tierMarkers {
			if strings.Contains(name, marker) {
				return true
			}
		}
		return false
	}

	if tierMarkers != nil {
		for _, v := range voices {
			if v.LanguageCode == lang && v.Gender == gender && matchesTier(v.Name) {
				return v.Name
			}
		}
	}
	for _, v := range voices {
		if v.LanguageCode == lang && v.Gender == gender && v.Premium {
			return v.Name
		}
	}
	for _, v := range voices {
		if v.LanguageCode == lang && v.Gender == gender {
			return v.Name
		}
	}
	for _, v := range voices {
		if v.LanguageCode == lang {
			return v.Name
		}
	}
	if len(voices) > 0 {
		return voices[0].Name
	}
	return ""
}
