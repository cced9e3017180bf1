package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	accountHandler "github.com/rfmendes/contas/internal/http/account"
	authHandler "github.com/rfmendes/contas/internal/http/auth"
	categoryHandler "github.com/rfmendes/contas/internal/http/category"
	expenseHandler "github.com/rfmendes/contas/internal/http/expense"
	mw "github.com/rfmendes/contas/internal/http/middleware"
)

func New(
	tokens mw.TokenParser,
	authV1 *authHandler.Handler,
	accountsV1 *accountHandler.Handler,
	categoriesV1 *categoryHandler.Handler,
	expensesV1 *expenseHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Route("/auth", authV1.Routes)

	// Everything below requires a bearer token.
	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(tokens))

		r.Route("/accounts", accountsV1.Routes)
		r.Route("/categories", categoriesV1.Routes)
		r.Route("/expenses", expensesV1.Routes)
	})

	return router
}
