package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"homeservice-booking/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Pusher delivers a stored notification to a connected client. Best effort.
type Pusher interface {
	Push(ctx context.Context, userID string, n *model.Notification) error
}

// RedisConfig holds connection settings for the real-time channel
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and checks the connection
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

type pushPayload struct {
	Event string              `json:"event"`
	Data  *model.Notification `json:"data"`
}

// RedisPusher publishes notifications on a per-user pub/sub channel
// that the socket gateway relays to clients
type RedisPusher struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPusher publishes to channels named prefix + userID
func NewRedisPusher(client redis.UniversalClient, prefix string) *RedisPusher {
	return &RedisPusher{client: client, prefix: prefix}
}

func (p *RedisPusher) Push(ctx context.Context, userID string, n *model.Notification) error {
	b, err := json.Marshal(pushPayload{Event: "notification", Data: n})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.prefix+userID, b).Err()
}

// LogPusher writes pushes to the log when no real-time channel is configured
type LogPusher struct {
	logger logrus.FieldLogger
}

func NewLogPusher(logger logrus.FieldLogger) *LogPusher {
	return &LogPusher{logger: logger}
}

func (p *LogPusher) Push(_ context.Context, userID string, n *model.Notification) error {
	p.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"notification_id": n.ID,
		"type":            n.Type,
	}).Debug("push notification")
	return nil
}
