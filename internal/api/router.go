package api

import (
	"atm-route-service/internal/api/handlers"
	"atm-route-service/internal/ports"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.ATMRepository, provider ports.TravelTimeProvider, defaults handlers.PlanDefaults) http.Handler {
	mux := http.NewServeMux()

	atmHandler := &handlers.ATMHandler{Repo: repo}
	planHandler := &handlers.PlanHandler{
		Repo:     repo,
		Provider: provider,
		Defaults: defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/atms", atmHandler.ATMs)
	mux.HandleFunc("/plans", planHandler.Plan)

	return requestIDMiddleware(loggingMiddleware(mux))
}
