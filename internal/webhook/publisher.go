package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/sms_incident_system/internal/models"
)

const (
	incidentEventsQueueKey = "incident_events"
)

// IncidentEvent - структура события о новом инциденте для вебхука
type IncidentEvent struct {
	IncidentID   string           `json:"incident_id"`
	IncidentType string           `json:"incident_type"`
	Priority     string           `json:"priority"`
	Status       string           `json:"status"`
	Timestamp    time.Time        `json:"timestamp"`
	Incident     *models.Incident `json:"incident,omitempty"`
}

// IncidentEventPublisher - интерфейс для публикации событий об инцидентах
type IncidentEventPublisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisEventPublisher - реализация IncidentEventPublisher, использующая Redis
type RedisEventPublisher struct {
	redisClient *redis.Client
}

// NewRedisEventPublisher создает новый RedisEventPublisher
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: client,
	}
}

// Publish публикует событие об инциденте в очередь Redis
func (p *RedisEventPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, incidentEventsQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
