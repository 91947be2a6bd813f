package handlers

import (
	"net/http"

	"github.com/nkiryanov/authd/internal/handlers/middleware"
	"github.com/nkiryanov/authd/internal/logger"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type routerAuthService interface {
	AuthService
	middleware.RequestAuthenticator
}

func NewRouter(authService routerAuthService, l logger.Logger) http.Handler {
	authHandler := NewAuth(authService)
	withAuth := middleware.AuthMiddleware(authService)

	apiauth := http.NewServeMux()
	apiauth.HandleFunc("POST /register", authHandler.register)
	apiauth.HandleFunc("POST /login", authHandler.login)
	apiauth.HandleFunc("POST /refresh", authHandler.refresh)
	apiauth.Handle("POST /signout", withAuth(http.HandlerFunc(authHandler.signOut)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))

	handler := chain(root,
		middleware.LoggerMiddleware(l),
	)

	return handler
}
