package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"chatline/auth"
)

// NewRouter wires the HTTP surface. CORS runs first so preflight
// requests are answered before authentication, then the request logger.
// The websocket endpoint handles its own handshake and stays outside
// the token middleware; the client passes identity on the query string.
func NewRouter(log *slog.Logger, handler *Handler, serveWS http.HandlerFunc,
	issuer *auth.Issuer, allowedOrigin string) *mux.Router {
	r := mux.NewRouter()
	r.Use(CORS(allowedOrigin), RequestLogger(log))

	r.HandleFunc("/signup", handler.Signup).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/login", handler.Login).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/logout", handler.Logout).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/images/{id}", handler.ServeImage).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/ws", serveWS).Methods(http.MethodGet)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(auth.Middleware(issuer))
	protected.HandleFunc("/check", handler.Check).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/update-profile", handler.UpdateProfile).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/messages/users", handler.Contacts).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/messages/search", handler.SearchMessages).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/messages/send/{id}", handler.SendMessage).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/messages/{id}", handler.Conversation).Methods(http.MethodGet, http.MethodOptions)

	return r
}
