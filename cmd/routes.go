package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"zakazBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	clientMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleClient))
	providerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleProvider))

	mux := pat.New()

	// Session
	mux.Post("/session", standardMiddleware.ThenFunc(app.userHandler.SignIn))

	// Requests
	mux.Post("/request", clientMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/request/user/:user_id", authMiddleware.ThenFunc(app.requestHandler.GetRequestsByOwner))
	mux.Get("/request/status/:status", authMiddleware.ThenFunc(app.requestHandler.GetRequestsByStatus))
	mux.Get("/request/:id", authMiddleware.ThenFunc(app.requestHandler.GetRequestByID))
	mux.Post("/request/status", authMiddleware.ThenFunc(app.requestHandler.AdvanceStatus))

	// Proposals
	mux.Post("/proposal", providerMiddleware.ThenFunc(app.proposalHandler.SubmitProposal))
	mux.Post("/proposal/accept", clientMiddleware.ThenFunc(app.proposalHandler.AcceptProposal))

	// Ratings
	mux.Post("/rating", clientMiddleware.ThenFunc(app.ratingHandler.SubmitRating))

	// Users
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Get("/provider/:id/stats", authMiddleware.ThenFunc(app.userHandler.GetProviderStats))
	mux.Post("/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.RegisterFCMToken))

	// Live subscriptions
	mux.Get("/ws", standardMiddleware.ThenFunc(app.WebSocketHandler))

	return standardMiddleware.Then(mux)
}
