package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Notification tells a check-in owner that someone is coming.
type Notification struct {
	CheckinID      string `json:"checkin_id"`
	OwnerID        string `json:"owner_id"`
	OwnerName      string `json:"owner_name"`
	OwnerPushToken string `json:"owner_push_token,omitempty"`
	ActorName      string `json:"actor_name"`
	LocationName   string `json:"location_name"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the process log instead of a push
// service.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Printf("NOTIFICATION to %s: %s is coming to your check-in at %s!", n.OwnerName, n.ActorName, n.LocationName)
	return nil
}

// RedisNotifier publishes notifications as JSON on a Redis channel for a push
// worker to deliver.
type RedisNotifier struct {
	redisClient *redis.Client
	channel     string
}

func NewRedisNotifier(redisClient *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{redisClient: redisClient, channel: channel}
}

func (r *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := r.redisClient.Publish(ctx, r.channel, payload).Err(); err != nil {
		return err
	}
	log.Printf("Published notification for check-in %s to %s", n.CheckinID, r.channel)
	return nil
}
