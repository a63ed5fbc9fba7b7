package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sojib-web/zap-shift-server/internal/models"
)

var RedisClient *redis.Client

const trackingCacheTTL = 5 * time.Minute

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func trackingKey(trackingID string) string {
	return fmt.Sprintf("tracking:events:%s", trackingID)
}

// SetTrackingCache caches the tracking events for a public tracking lookup
func SetTrackingCache(ctx context.Context, trackingID string, events []models.TrackingEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, trackingKey(trackingID), data, trackingCacheTTL).Err()
}

// GetTrackingCache retrieves cached tracking events, if present
func GetTrackingCache(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	data, err := RedisClient.Get(ctx, trackingKey(trackingID)).Result()
	if err != nil {
		return nil, err
	}

	var events []models.TrackingEvent
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, err
	}

	return events, nil
}

// InvalidateTrackingCache drops the cached events after a new event is appended
func InvalidateTrackingCache(ctx context.Context, trackingID string) error {
	return RedisClient.Del(ctx, trackingKey(trackingID)).Err()
}

// PublishParcelUpdate publishes a parcel status update to Redis pub/sub
func PublishParcelUpdate(ctx context.Context, parcelID uint, trackingID, status string, data map[string]interface{}) error {
	updateData := map[string]interface{}{
		"parcelId":   parcelID,
		"trackingId": trackingID,
		"status":     status,
		"data":       data,
		"timestamp":  time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "parcel:updates", jsonData).Err()
}
