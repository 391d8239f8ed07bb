// Package app wires the relay's HTTP surface together.
package app

import (
	"encoding/json"
	"net/http"

	"genai-relay/internal/genai"
)

// App represents the application with its router and relay state.
type App struct {
	Router *http.ServeMux
	Relay  *genai.ServerState
}

// NewApp creates and initializes a new App.
func NewApp() *App {
	app := &App{
		Router: http.NewServeMux(),
		Relay:  genai.NewServerState(),
	}

	app.initializeRoutes()
	return app
}

func (a *App) initializeRoutes() {
	a.Router.HandleFunc("/health", a.handleHealth)
	a.Relay.RegisterHandlers(a.Router)
}

// handleHealth reports liveness plus presence flags for the required
// provider credentials. It never exposes credential values.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":        true,
		"geminiKey": a.Relay.Service.HasChatCredential(),
		"ttsKey":    a.Relay.Service.HasTTSCredential(),
	})
}
