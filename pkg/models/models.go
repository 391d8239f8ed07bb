// Package models defines the shared data shapes exchanged between the HTTP
// handlers and the provider relay core.
package models

import "time"

// ResultKind identifies which payload a CanonicalResult carries.
type ResultKind string

const (
	// KindText is a chat reply.
	KindText ResultKind = "text"
	// KindAudio is synthesized speech.
	KindAudio ResultKind = "audio"
	// KindImage is a generated image.
	KindImage ResultKind = "image"
)

// CanonicalResult is the single normalized output shape the relay returns
// regardless of which provider response shape was parsed. Exactly one of
// Text or Data is populated, selected by Kind.
type CanonicalResult struct {
	Kind ResultKind
	// Text holds the reply for KindText.
	Text string
	// Data holds the decoded payload bytes for KindAudio and KindImage.
	Data []byte
	// MIME is the media type declared by the provider for Data.
	MIME string
}

// ChatTurn is one prior exchange in a conversation history.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is the inbound body for POST /chat.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
	Model   string     `json:"model,omitempty"`
}

// TTSRequest is the inbound body for POST /tts. LanguageCode and Lang are
// aliases; handlers coalesce them before use.
type TTSRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
	Lang         string `json:"lang,omitempty"`
	Gender       string `json:"gender,omitempty"`
	VoiceType    string `json:"voiceType,omitempty"`
}

// Language returns the requested language code, preferring the long form.
func (r TTSRequest) Language() string {
	if r.LanguageCode != "" {
		return r.LanguageCode
	}
	return r.Lang
}

// ImageRequest is the inbound body for POST /image.
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// VoiceDescriptor describes one voice from the speech provider's catalog.
type VoiceDescriptor struct {
	Name         string
	LanguageCode string
	Gender       string
	// Premium marks higher-tier voices, derived from the provider's
	// voice-family naming (Neural2, Wavenet, Studio).
	Premium bool
}

// VoiceCatalog is a wholesale snapshot of the provider's voice listing.
// It is replaced, never merged, and considered stale strictly after its TTL.
type VoiceCatalog struct {
	Voices    []VoiceDescriptor
	FetchedAt time.Time
}
