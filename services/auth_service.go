package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hangouts-server/utils/errors"
)

const (
	SessionTTL         = 24 * time.Hour
	RememberSessionTTL = 30 * 24 * time.Hour
)

// Session is an authenticated login. The signed token carries the session id;
// the session is live only while its Redis key exists.
type Session struct {
	ID     string
	UserID string
	Token  string
	TTL    time.Duration
}

type SessionService struct {
	redisClient *redis.Client
	jwtSecret   []byte
	clock       Clock
}

func NewSessionService(redisClient *redis.Client, jwtSecret string, clock Clock) *SessionService {
	return &SessionService{redisClient: redisClient, jwtSecret: []byte(jwtSecret), clock: clock}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Start signs a token for userID and registers the session in Redis.
func (s *SessionService) Start(ctx context.Context, userID string, remember bool) (Session, error) {
	ttl := SessionTTL
	if remember {
		ttl = RememberSessionTTL
	}
	now := s.clock.now()
	sid := uuid.New().String()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": userID,
		"sid":    sid,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return Session{}, errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	if err := s.redisClient.Set(ctx, sessionKey(sid), userID, ttl).Err(); err != nil {
		return Session{}, errors.StoreFailure(err)
	}
	return Session{ID: sid, UserID: userID, Token: tokenString, TTL: ttl}, nil
}

// Resolve validates a token and returns the live session it names.
func (s *SessionService) Resolve(ctx context.Context, tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.now))
	if err != nil || !token.Valid {
		return Session{}, errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, errors.ErrUnauthorized
	}
	userID, _ := claims["userID"].(string)
	sid, _ := claims["sid"].(string)
	if userID == "" || sid == "" {
		return Session{}, errors.ErrUnauthorized
	}

	stored, err := s.redisClient.Get(ctx, sessionKey(sid)).Result()
	if stderrors.Is(err, redis.Nil) {
		return Session{}, errors.ErrUnauthorized
	}
	if err != nil {
		return Session{}, errors.StoreFailure(err)
	}
	if stored != userID {
		return Session{}, errors.ErrUnauthorized
	}
	return Session{ID: sid, UserID: userID, Token: tokenString}, nil
}

// End revokes a session. Tokens naming it stop resolving immediately.
func (s *SessionService) End(ctx context.Context, sid string) error {
	if err := s.redisClient.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}
