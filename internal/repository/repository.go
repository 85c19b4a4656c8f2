package repository

import (
	"context"
	"database/sql"
	"time"

	"sentinel_cam/internal/models"
)

type StatusRepo interface {
	Save(ctx context.Context, s models.DeviceStatus) error
	Load(ctx context.Context) (models.DeviceStatus, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.CycleEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CycleEvent, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	StatusRepo StatusRepo
	EventRepo  EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		EventRepo:  NewEventSQLite(db),
	}
}
