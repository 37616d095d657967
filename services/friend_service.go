package services

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"

	"hangouts-server/models"
	"hangouts-server/store"
	"hangouts-server/utils/errors"
)

var (
	ErrAlreadyFriends = errors.NewAPIError("ALREADY_FRIENDS", "Already friends", http.StatusBadRequest)
	ErrRequestPending = errors.NewAPIError("REQUEST_PENDING", "Friend request already sent", http.StatusBadRequest)
	ErrSelfFriendship = errors.Invalid("Cannot send a friend request to yourself")
)

type FriendService struct {
	friendships FriendshipStore
	users       UserStore
	clock       Clock
}

func NewFriendService(friendships FriendshipStore, users UserStore, clock Clock) *FriendService {
	return &FriendService{friendships: friendships, users: users, clock: clock}
}

func validPair(a, b string) error {
	if a == "" || b == "" {
		return errors.Invalid("user ids are required")
	}
	if a == b {
		return ErrSelfFriendship
	}
	return nil
}

// lookupEdge returns the edge from -> to, or ok=false when there is none.
func (s *FriendService) lookupEdge(ctx context.Context, from, to string) (models.Friendship, bool, error) {
	f, err := s.friendships.GetFriendship(ctx, from, to)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return models.Friendship{}, false, nil
		}
		return models.Friendship{}, false, errors.StoreFailure(err)
	}
	return f, true, nil
}

// Request records a friend request from -> to. When to has already asked
// from, the pending request is accepted instead and the result is accepted.
func (s *FriendService) Request(ctx context.Context, from, to string) (models.FriendshipStatus, error) {
	if err := validPair(from, to); err != nil {
		return "", err
	}

	outgoing, ok, err := s.lookupEdge(ctx, from, to)
	if err != nil {
		return "", err
	}
	if ok {
		if outgoing.Status == models.FriendshipAccepted {
			return "", ErrAlreadyFriends
		}
		return "", ErrRequestPending
	}

	incoming, ok, err := s.lookupEdge(ctx, to, from)
	if err != nil {
		return "", err
	}
	if ok && incoming.Status == models.FriendshipPending {
		if err := s.Accept(ctx, to, from); err != nil {
			return "", err
		}
		return models.FriendshipAccepted, nil
	}

	err = s.friendships.InsertFriendship(ctx, models.Friendship{
		UserID:    from,
		FriendID:  to,
		Status:    models.FriendshipPending,
		CreatedAt: s.clock.now(),
	})
	if err != nil {
		if stderrors.Is(err, store.ErrDuplicate) {
			return "", ErrRequestPending
		}
		return "", errors.StoreFailure(err)
	}
	log.Printf("Friend request sent from %s to %s", from, to)
	return models.FriendshipPending, nil
}

// RequestByEmail resolves the recipient by email and calls Request.
func (s *FriendService) RequestByEmail(ctx context.Context, from, email string) (models.User, models.FriendshipStatus, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, "", errors.Invalid("friend_email required")
	}
	recipient, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, store.ErrNoRecord) {
			return models.User{}, "", errors.NotFound("No user found with that email")
		}
		return models.User{}, "", errors.StoreFailure(err)
	}
	status, err := s.Request(ctx, from, recipient.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return recipient, status, nil
}

// Accept is called by recipient on a pending requester -> recipient request.
// Without such a request nothing changes.
func (s *FriendService) Accept(ctx context.Context, requester, recipient string) error {
	if err := validPair(requester, recipient); err != nil {
		return err
	}
	updated, err := s.friendships.UpdateFriendshipStatus(ctx, requester, recipient, models.FriendshipPending, models.FriendshipAccepted)
	if err != nil {
		return errors.StoreFailure(err)
	}
	if !updated {
		return nil
	}

	err = s.friendships.InsertFriendship(ctx, models.Friendship{
		UserID:    recipient,
		FriendID:  requester,
		Status:    models.FriendshipAccepted,
		CreatedAt: s.clock.now(),
	})
	if stderrors.Is(err, store.ErrDuplicate) {
		// The reverse edge was inserted concurrently as a pending request.
		_, err = s.friendships.UpdateFriendshipStatus(ctx, recipient, requester, models.FriendshipPending, models.FriendshipAccepted)
	}
	if err != nil {
		return errors.StoreFailure(err)
	}
	log.Printf("Friend request accepted from %s to %s", requester, recipient)
	return nil
}

// Reject is called by recipient on a pending requester -> recipient request
// and removes it.
func (s *FriendService) Reject(ctx context.Context, requester, recipient string) error {
	if err := validPair(requester, recipient); err != nil {
		return err
	}
	if _, err := s.friendships.DeleteFriendship(ctx, requester, recipient, models.FriendshipPending); err != nil {
		return errors.StoreFailure(err)
	}
	log.Printf("Friend request rejected from %s to %s", requester, recipient)
	return nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	ids, err := s.friendships.ListFriendIDs(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	return s.summaries(ctx, ids)
}

func (s *FriendService) ListIncomingRequests(ctx context.Context, userID string) ([]models.UserSummary, error) {
	ids, err := s.friendships.ListRequesterIDs(ctx, userID, models.FriendshipPending)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	return s.summaries(ctx, ids)
}

// summaries loads users for ids, keeping the order of ids. Ids without a user
// are dropped.
func (s *FriendService) summaries(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	out := make([]models.UserSummary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}
