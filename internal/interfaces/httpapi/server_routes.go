package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSummaryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/gameweeks/summaries", handler.ListGameweekSummaries)
	mux.HandleFunc("GET /v1/gameweeks/{gameweek}/summary", handler.GetGameweekSummary)
}
