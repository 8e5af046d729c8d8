package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campuscare/wellbeing-chat/internal/logger"
)

func NewRouter(apiHandler *APIHandler, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes) // "/chat/" and "/chat" route the same

	// Public routes
	r.Post("/register", apiHandler.RegisterHandler)
	r.Post("/login", apiHandler.LoginHandler)
	r.Post("/logout", apiHandler.LogoutHandler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Session-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.SessionMiddleware)

		r.Get("/user", apiHandler.CurrentUserHandler)
		r.Post("/chat", apiHandler.PostChatHandler)
		r.Get("/chat", apiHandler.GetChatHistoryHandler)
	})

	return r
}
