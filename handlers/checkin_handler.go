package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"hangouts-server/middleware"
	"hangouts-server/models"
	"hangouts-server/services"
)

type CheckinHandler struct {
	checkinService    *services.CheckinService
	attendanceService *services.AttendanceService
}

type checkinResponse struct {
	Success bool           `json:"success"`
	Checkin models.Checkin `json:"checkin"`
}

func NewCheckinHandler(checkinService *services.CheckinService, attendanceService *services.AttendanceService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService, attendanceService: attendanceService}
}

func (h *CheckinHandler) CreateCheckin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID          string   `json:"user_id"`
		Lat             *float64 `json:"lat"`
		Lng             *float64 `json:"lng"`
		LocationName    string   `json:"location_name"`
		Message         string   `json:"message"`
		DurationMinutes *int     `json:"duration_minutes"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	checkin, err := h.checkinService.Create(r.Context(), services.CreateCheckinInput{
		UserID:          callerID(r, input.UserID),
		Lat:             input.Lat,
		Lng:             input.Lng,
		LocationName:    input.LocationName,
		Message:         input.Message,
		DurationMinutes: input.DurationMinutes,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkinResponse{Success: true, Checkin: checkin})
}

func (h *CheckinHandler) DeleteCheckin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID string `json:"user_id"`
	}
	if !decodeJSON(w, r, &input, true) {
		return
	}

	checkinID := mux.Vars(r)["id"]
	if err := h.checkinService.Delete(r.Context(), checkinID, callerID(r, input.UserID)); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Check-in deleted"})
}

func (h *CheckinHandler) MarkComing(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID    string `json:"user_id"`
		CheckinID string `json:"checkin_id"`
	}
	if !decodeJSON(w, r, &input, false) {
		return
	}

	already, err := h.attendanceService.MarkComing(r.Context(), input.CheckinID, callerID(r, input.UserID))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Already marked as coming"})
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Marked as coming"})
}
