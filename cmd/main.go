// genai-relay
//
// This application is a thin HTTP backend that forwards chat, text-to-speech
// and image-generation requests to external generative-AI REST APIs and
// relays the normalized responses to a static front end.
//
// Endpoints:
//
//	POST /chat   {message, history?, model?}            -> {ok, reply}
//	POST /tts    {text, languageCode|lang, gender, voiceType?} -> {ok, audioContent, mimeType}
//	POST /image  {prompt, aspectRatio?}                 -> {ok, imageDataUrl}
//	GET  /health                                        -> {ok, geminiKey, ttsKey}
//
// Environment Variables:
//   - GEMINI_API_KEY: credential for the text/image provider
//   - TTS_API_KEY: credential for the speech provider (falls back to GEMINI_API_KEY)
//   - CHAT_MODEL: primary chat model identifier override
//   - IMAGE_MODEL: image model identifier override
//   - PORT: listening port (default 8080)
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"genai-relay/internal/app"
	"genai-relay/internal/genai"
	"genai-relay/pkg/utils"

	"github.com/joho/godotenv"
)

// loadEnvFile loads environment variables from a .env file if present.
// It attempts to load from the current directory and parent directories
// up to the root directory.
func loadEnvFile() {
	// Try current directory first
	err := godotenv.Load()
	if err == nil {
		log.Println("Loaded environment variables from .env file in current directory")
		return
	}

	workDir, err := os.Getwd()
	if err != nil {
		log.Printf("Warning: Could not determine current directory: %v", err)
		return
	}

	// Try parent directories recursively
	for dir := workDir; dir != "/"; dir = filepath.Dir(dir) {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				log.Printf("Loaded environment variables from %s", envPath)
				return
			}
		}
	}

	log.Println("No .env file found. Using existing environment variables.")
}

func main() {
	loadEnvFile()

	port := flag.String("port", "", "Listening port (overrides PORT)")
	flag.Parse()

	config := genai.GetConfig()
	if *port != "" {
		config.Port = *port
	}

	if config.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set; /chat and /image will fail fast")
	} else {
		log.Printf("Using text/image provider key %s", utils.MaskToken(config.GeminiAPIKey))
	}
	if config.TTSAPIKey == "" {
		log.Println("Warning: TTS_API_KEY is not set; /tts will fail fast")
	} else {
		log.Printf("Using speech provider key %s", utils.MaskToken(config.TTSAPIKey))
	}

	a := app.NewApp()

	// Create a context that will be canceled on program termination
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	server := &http.Server{
		Addr:    ":" + config.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Starting server on :%s...", config.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server gracefully stopped")
	}
}
