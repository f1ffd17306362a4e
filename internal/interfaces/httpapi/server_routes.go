package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}/points", handler.ListMatchPoints)
	mux.HandleFunc("GET /v1/contests/{contestID}/rankings", handler.ListRankings)
	mux.HandleFunc("GET /v1/contests/{contestID}/prize-rules", handler.GetPrizeRules)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("GET /v1/contests/{contestID}/disbursements", admin(handler.ListDisbursements))
	mux.Handle("POST /v1/admin/matches/{matchID}/points", admin(handler.RecordMatchPoints))
	mux.Handle("POST /v1/admin/teams/{teamID}/recompute", admin(handler.RecomputeTeamTotal))
	mux.Handle("POST /v1/admin/tournaments/{tournamentID}/recompute", admin(handler.RecomputeTournament))
	mux.Handle("POST /v1/admin/contests/{contestID}/rankings", admin(handler.RecomputeRankings))
	mux.Handle("PUT /v1/admin/contests/{contestID}/prize-rules", admin(handler.ReplaceContestPrizeRules))
	mux.Handle("PUT /v1/admin/tournaments/{tournamentID}/prize-rules", admin(handler.ReplaceTournamentPrizeRules))
	mux.Handle("POST /v1/admin/contests/{contestID}/distribute", admin(handler.DistributePrizes))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/internal/events/match-completed", RequireAdminToken(adminToken, http.HandlerFunc(handler.PublishMatchCompleted)))
	mux.Handle("POST /v1/internal/events/payment-captured", RequireAdminToken(adminToken, http.HandlerFunc(handler.PublishPaymentCaptured)))
	mux.Handle("POST /v1/internal/payouts/callback", RequireAdminToken(adminToken, http.HandlerFunc(handler.PayoutCallback)))
}
