// Package memstore is an in-process backend. It keeps everything in maps
// behind a single mutex and enforces the same unique keys and cascades as the
// database backends.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hangouts-server/models"
	"hangouts-server/store"
)

type edgeKey struct{ from, to string }

type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	friendships map[edgeKey]models.Friendship
	checkins    map[string]models.Checkin
	attendees   map[edgeKey]models.Attendee // keyed by (checkin id, user id)
}

func New() *Store {
	return &Store{
		users:       make(map[string]models.User),
		friendships: make(map[edgeKey]models.Friendship),
		checkins:    make(map[string]models.Checkin),
		attendees:   make(map[edgeKey]models.Attendee),
	}
}

func (s *Store) Close(context.Context) error { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return store.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNoRecord
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNoRecord
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) SetPushToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNoRecord
	}
	u.PushToken = token
	s.users[userID] = u
	return nil
}

// Friendships

func (s *Store) GetFriendship(_ context.Context, userID, friendID string) (models.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.friendships[edgeKey{userID, friendID}]
	if !ok {
		return models.Friendship{}, store.ErrNoRecord
	}
	return f, nil
}

func (s *Store) InsertFriendship(_ context.Context, f models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{f.UserID, f.FriendID}
	if _, ok := s.friendships[key]; ok {
		return store.ErrDuplicate
	}
	s.friendships[key] = f
	return nil
}

func (s *Store) UpdateFriendshipStatus(_ context.Context, userID, friendID string, from, to models.FriendshipStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{userID, friendID}
	f, ok := s.friendships[key]
	if !ok || f.Status != from {
		return false, nil
	}
	f.Status = to
	s.friendships[key] = f
	return true, nil
}

func (s *Store) DeleteFriendship(_ context.Context, userID, friendID string, status models.FriendshipStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{userID, friendID}
	f, ok := s.friendships[key]
	if !ok || f.Status != status {
		return false, nil
	}
	delete(s.friendships, key)
	return true, nil
}

func (s *Store) ListFriendIDs(_ context.Context, userID string, status models.FriendshipStatus) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []models.Friendship
	for k, f := range s.friendships {
		if k.from == userID && f.Status == status {
			edges = append(edges, f)
		}
	}
	sortEdges(edges)
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.FriendID)
	}
	return ids, nil
}

func (s *Store) ListRequesterIDs(_ context.Context, friendID string, status models.FriendshipStatus) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []models.Friendship
	for k, f := range s.friendships {
		if k.to == friendID && f.Status == status {
			edges = append(edges, f)
		}
	}
	sortEdges(edges)
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, f.UserID)
	}
	return ids, nil
}

func sortEdges(edges []models.Friendship) {
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].UserID+edges[i].FriendID < edges[j].UserID+edges[j].FriendID
	})
}

// Check-ins

func (s *Store) InsertCheckin(_ context.Context, c models.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[c.ID]; ok {
		return store.ErrDuplicate
	}
	s.checkins[c.ID] = copyCheckin(c)
	return nil
}

func (s *Store) GetCheckin(_ context.Context, id string) (models.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkins[id]
	if !ok {
		return models.Checkin{}, store.ErrNoRecord
	}
	return copyCheckin(c), nil
}

func (s *Store) DeleteCheckin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[id]; !ok {
		return store.ErrNoRecord
	}
	delete(s.checkins, id)
	for k := range s.attendees {
		if k.from == id {
			delete(s.attendees, k)
		}
	}
	return nil
}

func (s *Store) ListActiveCheckins(_ context.Context, ownerIDs []string, now time.Time) ([]models.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var out []models.Checkin
	for _, c := range s.checkins {
		if owners[c.UserID] && c.Active(now) {
			out = append(out, copyCheckin(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountCheckins(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.checkins {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ListLocationNames returns location names of check-ins, most recent first.
// An empty userID means all users; a limit of zero means no limit.
func (s *Store) ListLocationNames(_ context.Context, userID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Checkin
	for _, c := range s.checkins {
		if userID == "" || c.UserID == userID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	names := make([]string, 0, len(matched))
	for _, c := range matched {
		names = append(names, c.LocationName)
	}
	return names, nil
}

func copyCheckin(c models.Checkin) models.Checkin {
	c.Location.Coordinates = append([]float64(nil), c.Location.Coordinates...)
	return c
}

// Attendees

func (s *Store) GetAttendee(_ context.Context, checkinID, userID string) (models.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attendees[edgeKey{checkinID, userID}]
	if !ok {
		return models.Attendee{}, store.ErrNoRecord
	}
	return a, nil
}

func (s *Store) InsertAttendee(_ context.Context, a models.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{a.CheckinID, a.UserID}
	if _, ok := s.attendees[key]; ok {
		return store.ErrDuplicate
	}
	s.attendees[key] = a
	return nil
}

func (s *Store) ListAttendees(_ context.Context, checkinID string) ([]models.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Attendee
	for k, a := range s.attendees {
		if k.from == checkinID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
