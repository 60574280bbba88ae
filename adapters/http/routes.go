package http

import (
	"github.com/labstack/echo/v4"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/chatstream"
)

const ListModelsPath = "/functions/v1/list-models"

// Routes groups everything the server mounts.
type Routes struct {
	Relay     *RelayHandler
	API       *APIHandler
	Auth      *Authenticator
	Tokens    *TokenIssuer
	WebSocket echo.HandlerFunc
}

// Register mounts the relay, the REST API and the websocket endpoint on e.
func (r Routes) Register(e *echo.Echo) {
	e.POST(chatstream.ChatPath, r.Relay.Chat)
	e.GET(ListModelsPath, r.Relay.ListModels)

	api := e.Group("/api/v1")
	api.GET("/health", HealthCheck)
	if r.Tokens != nil {
		api.POST("/auth/token", r.Tokens.Issue)
	}
	if r.API != nil {
		api.GET("/methods", r.API.ListMethods)

		auth := r.Auth.Middleware
		api.GET("/profile", r.API.GetProfile, auth)
		api.PUT("/profile", r.API.UpdateProfile, auth)
		api.GET("/progress", r.API.ListProgress, auth)
		api.PUT("/progress", r.API.RecordProgress, auth)
	}

	if r.WebSocket != nil {
		e.GET("/ws", r.WebSocket, r.Auth.Middleware)
	}
}
