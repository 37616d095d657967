package handlers

import (
	"net/http"

	"hangouts-server/middleware"
	"hangouts-server/models"
	"hangouts-server/services"
)

type FeedHandler struct {
	feedService  *services.FeedService
	statsService *services.StatsService
}

type feedResponse struct {
	Checkins []models.FeedItem `json:"checkins"`
}

func NewFeedHandler(feedService *services.FeedService, statsService *services.StatsService) *FeedHandler {
	return &FeedHandler{feedService: feedService, statsService: statsService}
}

func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewer := callerID(r, r.URL.Query().Get("user_id"))
	checkins, err := h.feedService.Feed(r.Context(), viewer)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponse{Checkins: checkins})
}

// UserStats must run behind RequireSession.
func (h *FeedHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.UserStats(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
