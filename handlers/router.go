package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hangouts-server/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Friend  *FriendHandler
	Checkin *CheckinHandler
	Feed    *FeedHandler
}

type RouterConfig struct {
	Sessions       middleware.SessionResolver
	CookieName     string
	AllowedOrigins []string
}

func NewRouter(h Handlers, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Routes that accept either a session or an explicit user_id
	open := api.NewRoute().Subrouter()
	open.Use(middleware.LoadSession(cfg.Sessions, cfg.CookieName))
	open.HandleFunc("/signup", h.Auth.Signup).Methods("POST", "OPTIONS")
	open.HandleFunc("/login", h.Auth.Login).Methods("POST", "OPTIONS")
	open.HandleFunc("/checkin", h.Checkin.CreateCheckin).Methods("POST", "OPTIONS")
	open.HandleFunc("/checkin/{id}", h.Checkin.DeleteCheckin).Methods("DELETE", "OPTIONS")
	open.HandleFunc("/feed", h.Feed.Feed).Methods("GET", "OPTIONS")
	open.HandleFunc("/coming", h.Checkin.MarkComing).Methods("POST", "OPTIONS")
	open.HandleFunc("/fcm-token", h.User.SetPushToken).Methods("POST", "OPTIONS")

	// Routes that need a logged-in session
	private := api.NewRoute().Subrouter()
	private.Use(middleware.RequireSession(cfg.Sessions, cfg.CookieName))
	private.HandleFunc("/logout", h.Auth.Logout).Methods("POST", "OPTIONS")
	private.HandleFunc("/current_user", h.User.CurrentUser).Methods("GET", "OPTIONS")
	private.HandleFunc("/friends", h.Friend.ListFriends).Methods("GET", "OPTIONS")
	private.HandleFunc("/friends/add", h.Friend.AddFriend).Methods("POST", "OPTIONS")
	private.HandleFunc("/friends/requests", h.Friend.ListRequests).Methods("GET", "OPTIONS")
	private.HandleFunc("/friends/accept", h.Friend.AcceptRequest).Methods("POST", "OPTIONS")
	private.HandleFunc("/friends/reject", h.Friend.RejectRequest).Methods("POST", "OPTIONS")
	private.HandleFunc("/stats/user", h.Feed.UserStats).Methods("GET", "OPTIONS")

	return r
}
