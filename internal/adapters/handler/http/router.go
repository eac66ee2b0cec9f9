package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

func NewHandler(authHandler *AuthHandler, signer ports.AccessTokenSigner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Post("/login", authHandler.Login)
	r.Post("/token", authHandler.Token)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(signer))
		r.Get("/logout", authHandler.Logout)
	})

	return r
}
