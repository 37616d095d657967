package services

import (
	"context"
	stderrors "errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"hangouts-server/models"
	"hangouts-server/store"
	"hangouts-server/utils/errors"
)

// CreateCheckinInput mirrors the check-in request body. Lat and Lng are
// pointers so that an explicit 0 can be told apart from a missing field.
type CreateCheckinInput struct {
	UserID          string
	Lat             *float64
	Lng             *float64
	LocationName    string
	Message         string
	DurationMinutes *int
}

type CheckinService struct {
	checkins CheckinStore
	users    UserStore
	clock    Clock
}

func NewCheckinService(checkins CheckinStore, users UserStore, clock Clock) *CheckinService {
	return &CheckinService{checkins: checkins, users: users, clock: clock}
}

func (s *CheckinService) Create(ctx context.Context, in CreateCheckinInput) (models.Checkin, error) {
	if in.UserID == "" || in.Lat == nil || in.Lng == nil {
		return models.Checkin{}, errors.Invalid("Missing required fields")
	}
	lat, lng := *in.Lat, *in.Lng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.Checkin{}, errors.Invalid("invalid coordinates")
	}
	duration := models.DefaultDurationMinutes
	if in.DurationMinutes != nil {
		duration = *in.DurationMinutes
	}
	if duration <= 0 {
		return models.Checkin{}, errors.Invalid("duration_minutes must be positive")
	}
	if duration > models.MaxDurationMinutes {
		return models.Checkin{}, errors.Invalid("duration_minutes too large")
	}
	locationName := strings.TrimSpace(in.LocationName)
	if locationName == "" {
		locationName = models.DefaultLocationName
	}

	if _, err := s.users.GetUserByID(ctx, in.UserID); err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return models.Checkin{}, errors.NotFound("User not found")
		}
		return models.Checkin{}, errors.StoreFailure(err)
	}

	now := s.clock.now()
	checkin := models.Checkin{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		LocationName: locationName,
		Location:     models.NewPoint(lat, lng),
		Message:      in.Message,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(duration) * time.Minute),
	}
	if err := s.checkins.InsertCheckin(ctx, checkin); err != nil {
		return models.Checkin{}, errors.StoreFailure(err)
	}
	log.Printf("Check-in %s created by %s at %q until %s", checkin.ID, checkin.UserID, checkin.LocationName, checkin.ExpiresAt.Format(time.RFC3339))
	return checkin, nil
}

// Delete removes a check-in owned by requester together with its attendees.
func (s *CheckinService) Delete(ctx context.Context, checkinID, requester string) error {
	if checkinID == "" || requester == "" {
		return errors.Invalid("user_id required")
	}
	checkin, err := s.checkins.GetCheckin(ctx, checkinID)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return errors.NotFound("Check-in not found")
		}
		return errors.StoreFailure(err)
	}
	if checkin.UserID != requester {
		return errors.NewAPIError(errors.ErrForbidden.Code, "You can only delete your own check-ins", errors.ErrForbidden.Status)
	}
	if err := s.checkins.DeleteCheckin(ctx, checkinID); err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return errors.NotFound("Check-in not found")
		}
		return errors.StoreFailure(err)
	}
	log.Printf("Check-in %s deleted by %s", checkinID, requester)
	return nil
}
