/*
Package genai implements the relay core between the public HTTP surface and
the external generative-AI REST APIs.

# Architecture Overview

The package follows a layered pattern:

1. HTTP Handlers (handlers.go)
  - Provide the /chat, /tts and /image endpoints
  - Validate inbound bodies against JSON schemas (validate.go)
  - Convert every failure into one well-formed JSON envelope

2. Orchestrators (chat.go, tts.go, image.go)
  - Build provider requests from the generic inbound shapes
  - Try fallback models, voices and rewritten prompts on failure
  - Keep every fallback sequence fixed, small and strictly sequential

3. Provider Client (service.go)
  - Issues one HTTP request per attempt, reads the body as text first
  - Separates non-JSON bodies (MalformedResponseError) from structured
    provider failures (ProviderError)
  - Never retries; parameter substitution lives in the orchestrators

4. Response Normalizer (normalize.go)
  - Probes the known provider response shapes in priority order
  - Produces the single CanonicalResult contract for all three kinds

5. Configuration (config.go)
  - Loads credentials, model identifiers and endpoint bases from the
    environment once per process

# Request Flow

 1. HTTP request arrives at /chat, /tts or /image
 2. The chat limiter admits or rejects the client (sliding 60s window)
 3. The body is schema-validated and empty input short-circuits
 4. The orchestrator performs up to three sequential provider attempts
 5. The normalized result (reply text, audio bytes or image bytes) is
    returned in the JSON envelope

# Shared State

Only two structures outlive a request: the rate-limiter map and the voice
catalog snapshot. Both are lock-protected and owned by injected structs,
never package globals, and neither persists across process restarts.
*/
package genai
