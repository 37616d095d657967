package services

import (
	"context"
	stderrors "errors"
	"log"

	"hangouts-server/models"
	"hangouts-server/store"
	"hangouts-server/utils/errors"
)

const unknownActor = "Someone"

type AttendanceService struct {
	attendees AttendeeStore
	checkins  CheckinStore
	users     UserStore
	notifier  Notifier
	clock     Clock
}

func NewAttendanceService(attendees AttendeeStore, checkins CheckinStore, users UserStore, notifier Notifier, clock Clock) *AttendanceService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &AttendanceService{
		attendees: attendees,
		checkins:  checkins,
		users:     users,
		notifier:  notifier,
		clock:     clock,
	}
}

// MarkComing records that user is coming to the check-in. It reports
// alreadyMarked when the pair was recorded before, in which case nothing is
// written and nobody is notified.
func (s *AttendanceService) MarkComing(ctx context.Context, checkinID, userID string) (alreadyMarked bool, err error) {
	if checkinID == "" || userID == "" {
		return false, errors.Invalid("Missing required fields")
	}

	_, err = s.attendees.GetAttendee(ctx, checkinID, userID)
	if err == nil {
		return true, nil
	}
	if !stderrors.Is(err, store.ErrNoRecord) {
		return false, errors.StoreFailure(err)
	}

	checkin, err := s.checkins.GetCheckin(ctx, checkinID)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return false, errors.NotFound("Check-in not found")
		}
		return false, errors.StoreFailure(err)
	}

	err = s.attendees.InsertAttendee(ctx, models.Attendee{
		CheckinID: checkinID,
		UserID:    userID,
		Status:    models.AttendeeComing,
		CreatedAt: s.clock.now(),
	})
	if err != nil {
		// Lost a race with an identical call; the unique key kept one record.
		if stderrors.Is(err, store.ErrDuplicate) {
			return true, nil
		}
		if stderrors.Is(err, store.ErrNoRecord) {
			return false, errors.NotFound("Check-in not found")
		}
		return false, errors.StoreFailure(err)
	}

	s.notifyOwner(ctx, checkin, userID)
	return false, nil
}

// notifyOwner never fails the caller; lookup and delivery errors are logged.
func (s *AttendanceService) notifyOwner(ctx context.Context, checkin models.Checkin, actorID string) {
	owner, err := s.users.GetUserByID(ctx, checkin.UserID)
	if err != nil {
		log.Printf("Skipping notification for check-in %s: owner lookup failed: %v", checkin.ID, err)
		return
	}
	actorName := unknownActor
	if actor, err := s.users.GetUserByID(ctx, actorID); err == nil {
		actorName = actor.Username
	} else {
		log.Printf("Actor lookup failed for %s: %v", actorID, err)
	}

	err = s.notifier.Notify(ctx, Notification{
		CheckinID:      checkin.ID,
		OwnerID:        owner.ID,
		OwnerName:      owner.Username,
		OwnerPushToken: owner.PushToken,
		ActorName:      actorName,
		LocationName:   checkin.LocationName,
	})
	if err != nil {
		log.Printf("Failed to notify %s about check-in %s: %v", owner.ID, checkin.ID, err)
	}
}
