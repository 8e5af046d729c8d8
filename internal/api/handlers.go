package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campuscare/wellbeing-chat/internal/auth"
	"github.com/campuscare/wellbeing-chat/internal/core"
	"github.com/campuscare/wellbeing-chat/internal/logger"
	"github.com/campuscare/wellbeing-chat/internal/store"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "session_user_id"

type APIHandler struct {
	chatService  *core.ChatService
	sessions     *auth.SessionManager
	cookieSecure bool
	log          *logger.Logger
}

func NewAPIHandler(cs *core.ChatService, sessions *auth.SessionManager, cookieSecure bool, log *logger.Logger) *APIHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &APIHandler{
		chatService:  cs,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.chatService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.chatService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, expiresAt, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Info("User logged in", logrus.Fields{"user_id": user.ID})
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.Revoke(r.Context(), cookie.Value); err != nil {
			// The cookie is cleared regardless.
			h.log.Warn("Failed to revoke session", logrus.Fields{"error": err.Error()})
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (h *APIHandler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	user, err := h.chatService.CurrentUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *APIHandler) PostChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.chatService.PostMessage(r.Context(), userID, req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

type historyResponse struct {
	UserID      string           `json:"user_id"`
	ChatHistory []store.Exchange `json:"chat_history"`
}

func (h *APIHandler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	transcript, err := h.chatService.History(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Chat history not found")
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{UserID: userID, ChatHistory: transcript.Messages})
}
