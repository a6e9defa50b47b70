// Package api exposes the HTTP surface: authentication, messaging
// history, image serving and health. Real-time traffic goes over the ws
// package; everything here is plain request/response.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"chatline/auth"
	"chatline/contract"
	"chatline/errors"
	"chatline/repositories"
	"chatline/services"
)

type Handler struct {
	log         *slog.Logger
	authService services.IAuthService
	chatService services.IChatService
	images      repositories.IImageRepository
	registry    contract.IRegistry
	issuer      *auth.Issuer
}

func NewHandler(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, images repositories.IImageRepository,
	registry contract.IRegistry, issuer *auth.Issuer) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		chatService: chatService,
		images:      images,
		registry:    registry,
		issuer:      issuer,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  repositories.User `json:"user"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Register(req.Email, req.FullName, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, string(token))
	h.writeJSON(w, http.StatusCreated, authResponse{Token: string(token), User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, string(token))
	h.writeJSON(w, http.StatusOK, authResponse{Token: string(token), User: user})
}

// Logout clears the session cookie. Tokens are stateless, so the cookie
// (or the client forgetting its copy) is the only thing to invalidate.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.authService.GetUser(userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProfilePic == "" {
		h.respondError(w, http.StatusBadRequest, "profilePic is required")
		return
	}

	user, err := h.authService.UpdateProfilePicture(userID, req.ProfilePic)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	users, err := h.chatService.ListContacts(userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if users == nil {
		users = []repositories.User{}
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	otherID := mux.Vars(r)["id"]

	messages, err := h.chatService.GetConversation(userID, otherID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	receiverID := mux.Vars(r)["id"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.chatService.SendMessage(r.Context(), services.SendMessageCommand{
		SenderID:   userID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      req.Image,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, message)
}

func (h *Handler) SearchMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	terms := r.URL.Query().Get("q")
	if terms == "" {
		h.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	hits, err := h.chatService.SearchMessages(r.Context(), userID, terms, limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hits)
}

func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.images.GetImage(mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(data)
}

type healthResponse struct {
	Status      string  `json:"status"`
	OnlineUsers int     `json:"onlineUsers"`
	MemoryRSS   uint64  `json:"memoryRss"`
	CPUPercent  float64 `json:"cpuPercent"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", OnlineUsers: len(h.registry.ListOnline())}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memory, err := proc.MemoryInfo(); err == nil {
			resp.MemoryRSS = memory.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("response encoding failed", "error", err)
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
		h.respondError(w, status, "internal error")
		return
	}
	h.respondError(w, status, err.Error())
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
