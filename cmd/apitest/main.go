// Command apitest exercises a running genai-relay instance from the command
// line. It is a manual smoke tester, not part of the server.
//
// Usage:
//
//	apitest -health
//	apitest -chat "Hello there"
//	apitest -tts "Read this aloud" -lang en-US -gender FEMALE
//	apitest -image "A lighthouse at dawn"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "Relay base URL")
	health := flag.Bool("health", false, "Check /health")
	chat := flag.String("chat", "", "Send a chat message")
	tts := flag.String("tts", "", "Synthesize the given text")
	lang := flag.String("lang", "en-US", "Language code for -tts")
	gender := flag.String("gender", "FEMALE", "Voice gender for -tts")
	image := flag.String("image", "", "Generate an image from the given prompt")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}

	switch {
	case *health:
		get(client, *base+"/health")
	case *chat != "":
		post(client, *base+"/chat", map[string]any{"message": *chat})
	case *tts != "":
		post(client, *base+"/tts", map[string]any{
			"text":         *tts,
			"languageCode": *lang,
			"gender":       *gender,
		})
	case *image != "":
		post(client, *base+"/image", map[string]any{"prompt": *image})
	default:
		flag.Usage()
	}
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	dump(url, resp)
}

func post(client *http.Client, url string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("failed to marshal request: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	dump(url, resp)
}

func dump(url string, resp *http.Response) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("failed to read response: %v", err)
	}

	fmt.Printf("%s -> %s\n", url, resp.Status)

	// Large base64 payloads are summarized instead of dumped.
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		fmt.Println(string(raw))
		return
	}
	for key, value := range parsed {
		if s, ok := value.(string); ok && len(s) > 120 {
			fmt.Printf("  %s: <%d chars>\n", key, len(s))
			continue
		}
		fmt.Printf("  %s: %v\n", key, value)
	}
}
