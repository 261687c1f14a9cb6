package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/sms_incident_system/internal/models"
	"github.com/shenikar/sms_incident_system/internal/service"
)

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Upsert сохраняет запись об инциденте. Запись безусловная: последняя запись
// с тем же incident_id побеждает, идентификаторы ожидаются уникальными
// для каждого входящего запроса.
func (r *IncidentRepository) Upsert(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (incident_id, incident_location, incident_type, priority, timestamp, status, source, original_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (incident_id) DO UPDATE SET
			incident_location = EXCLUDED.incident_location,
			incident_type = EXCLUDED.incident_type,
			priority = EXCLUDED.priority,
			timestamp = EXCLUDED.timestamp,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			original_message = EXCLUDED.original_message;
	`
	_, err := r.db.Exec(ctx, query,
		incident.IncidentID,
		incident.IncidentLocation,
		incident.IncidentType,
		incident.Priority,
		incident.Timestamp,
		incident.Status,
		incident.Source,
		incident.OriginalMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его идентификатору
func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	incident := &models.Incident{}
	query := `
		SELECT
			incident_id,
			incident_location,
			incident_type,
			priority,
			timestamp,
			status,
			source,
			original_message
		FROM incidents
		WHERE incident_id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&incident.IncidentID,
		&incident.IncidentLocation,
		&incident.IncidentType,
		&incident.Priority,
		&incident.Timestamp,
		&incident.Status,
		&incident.Source,
		&incident.OriginalMessage,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// UpdateStatus меняет только поле status существующей записи
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE incidents SET
			status = $1
		WHERE incident_id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update incident status: %w", err)
	}

	// Если RowsAffected() == 0, значит инцидента с таким id не существует
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for status update: %w", id, service.ErrIncidentNotFound)
	}
	return nil
}

// Delete удаляет запись об инциденте из хранилища
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM incidents
		WHERE incident_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, service.ErrIncidentNotFound)
	}
	return nil
}

// ListIncidents возвращает инциденты с опциональной фильтрацией по времени:
// between / от даты / до даты, в зависимости от переданных границ
func (r *IncidentRepository) ListIncidents(ctx context.Context, startDate, endDate *time.Time) ([]*models.Incident, error) {
	query := `
		SELECT
			incident_id,
			incident_location,
			incident_type,
			priority,
			timestamp,
			status,
			source,
			original_message
		FROM incidents
	`
	args := []any{}
	switch {
	case startDate != nil && endDate != nil:
		query += ` WHERE timestamp BETWEEN $1 AND $2`
		args = append(args, *startDate, *endDate)
	case startDate != nil:
		query += ` WHERE timestamp >= $1`
		args = append(args, *startDate)
	case endDate != nil:
		query += ` WHERE timestamp <= $1`
		args = append(args, *endDate)
	}
	query += ` ORDER BY timestamp DESC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.IncidentID,
			&incident.IncidentLocation,
			&incident.IncidentType,
			&incident.Priority,
			&incident.Timestamp,
			&incident.Status,
			&incident.Source,
			&incident.OriginalMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id string) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id)
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.IncidentID)
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id string) error {
	key := fmt.Sprintf("incident:%s", id)
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
