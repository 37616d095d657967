// Package pgstore persists the same records as mongostore in PostgreSQL with
// PostGIS. Attendee rows are removed by ON DELETE CASCADE when their check-in
// is deleted.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hangouts-server/models"
	"hangouts-server/store"
)

//go:embed schema.sql
var schema string

type Store struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Println("Connected to PostgreSQL")
	return &Store{Pool: pool}, nil
}

func (s *Store) Close(context.Context) error {
	s.Pool.Close()
	return nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNoRecord
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return store.ErrDuplicate
		case foreignKeyViolation:
			return store.ErrNoRecord
		}
	}
	return err
}

// Users

const userColumns = `id, username, email, password_hash, push_token, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PushToken, &u.CreatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.PushToken, user.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, mapErr(err)
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) SetPushToken(ctx context.Context, userID, token string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE users SET push_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNoRecord
	}
	return nil
}

// Friendships

func (s *Store) GetFriendship(ctx context.Context, userID, friendID string) (models.Friendship, error) {
	var f models.Friendship
	err := s.Pool.QueryRow(ctx, `
		SELECT user_id, friend_id, status, created_at
		FROM friendships
		WHERE user_id = $1 AND friend_id = $2`,
		userID, friendID,
	).Scan(&f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	return f, mapErr(err)
}

func (s *Store) InsertFriendship(ctx context.Context, f models.Friendship) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, $4)`,
		f.UserID, f.FriendID, string(f.Status), f.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) UpdateFriendshipStatus(ctx context.Context, userID, friendID string, from, to models.FriendshipStatus) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE friendships SET status = $1
		WHERE user_id = $2 AND friend_id = $3 AND status = $4`,
		string(to), userID, friendID, string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteFriendship(ctx context.Context, userID, friendID string, status models.FriendshipStatus) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = $3`,
		userID, friendID, string(status),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListFriendIDs(ctx context.Context, userID string, status models.FriendshipStatus) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT friend_id FROM friendships
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at`, userID, string(status))
}

func (s *Store) ListRequesterIDs(ctx context.Context, friendID string, status models.FriendshipStatus) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT user_id FROM friendships
		WHERE friend_id = $1 AND status = $2
		ORDER BY created_at`, friendID, string(status))
}

func (s *Store) queryIDs(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Check-ins

const checkinColumns = `id, user_id, location_name, ST_AsGeoJSON(geom), message, created_at, expires_at`

func scanCheckin(row pgx.Row) (models.Checkin, error) {
	var (
		c       models.Checkin
		geojson string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.LocationName, &geojson, &c.Message, &c.CreatedAt, &c.ExpiresAt); err != nil {
		return c, err
	}
	// An unreadable point is left empty; readers treat it as (0, 0).
	if err := json.Unmarshal([]byte(geojson), &c.Location); err != nil {
		log.Printf("Failed to decode geometry of check-in %s: %v", c.ID, err)
		c.Location = models.GeoPoint{}
	}
	return c, nil
}

func (s *Store) InsertCheckin(ctx context.Context, c models.Checkin) error {
	lat, lng, _ := c.Location.LatLng()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO checkins (id, user_id, location_name, geom, message, created_at, expires_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8)`,
		c.ID, c.UserID, c.LocationName, lng, lat, c.Message, c.CreatedAt, c.ExpiresAt,
	)
	return mapErr(err)
}

func (s *Store) GetCheckin(ctx context.Context, id string) (models.Checkin, error) {
	c, err := scanCheckin(s.Pool.QueryRow(ctx, `SELECT `+checkinColumns+` FROM checkins WHERE id = $1`, id))
	return c, mapErr(err)
}

func (s *Store) DeleteCheckin(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM checkins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNoRecord
	}
	return nil
}

func (s *Store) ListActiveCheckins(ctx context.Context, ownerIDs []string, now time.Time) ([]models.Checkin, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+checkinColumns+`
		FROM checkins
		WHERE user_id = ANY($1) AND expires_at > $2
		ORDER BY created_at DESC`,
		ownerIDs, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var checkins []models.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

func (s *Store) CountCheckins(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM checkins WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (s *Store) ListLocationNames(ctx context.Context, userID string, limit int) ([]string, error) {
	sql := `SELECT location_name FROM checkins WHERE ($1 = '' OR user_id = $1) ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.queryIDs(ctx, sql, args...)
}

// Attendees

func (s *Store) GetAttendee(ctx context.Context, checkinID, userID string) (models.Attendee, error) {
	var a models.Attendee
	err := s.Pool.QueryRow(ctx, `
		SELECT checkin_id, user_id, status, created_at
		FROM attendees
		WHERE checkin_id = $1 AND user_id = $2`,
		checkinID, userID,
	).Scan(&a.CheckinID, &a.UserID, &a.Status, &a.CreatedAt)
	return a, mapErr(err)
}

func (s *Store) InsertAttendee(ctx context.Context, a models.Attendee) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO attendees (checkin_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)`,
		a.CheckinID, a.UserID, a.Status, a.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) ListAttendees(ctx context.Context, checkinID string) ([]models.Attendee, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT checkin_id, user_id, status, created_at
		FROM attendees
		WHERE checkin_id = $1
		ORDER BY created_at, user_id`,
		checkinID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attendees []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.CheckinID, &a.UserID, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
