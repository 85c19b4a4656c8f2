package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sentinel_cam/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	deviceStatusRowID = 1

	upsertStatusSQL = `
		INSERT INTO device_status (id, state, config_id, period, window_end, runtime_s, last_decision, connected, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state=excluded.state,
			config_id=excluded.config_id,
			period=excluded.period,
			window_end=excluded.window_end,
			runtime_s=excluded.runtime_s,
			last_decision=excluded.last_decision,
			connected=excluded.connected,
			updated_at=excluded.updated_at
	`

	selectStatusSQL = `
		SELECT id, state, config_id, period, window_end, runtime_s, last_decision, connected, updated_at
		FROM device_status WHERE id=?
	`
)

// Save upserts the single device_status row (id always 1).
func (r *StatusSQLite) Save(ctx context.Context, s models.DeviceStatus) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		deviceStatusRowID,
		s.State,
		s.ConfigID,
		s.Period,
		s.WindowEnd,
		s.RuntimeSeconds,
		s.LastDecision,
		s.Connected,
		ts,
	)
	return err
}

// Load returns the persisted status, or a zero value (ID 0) when none exists yet.
func (r *StatusSQLite) Load(ctx context.Context) (models.DeviceStatus, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL, deviceStatusRowID)

	var (
		s            models.DeviceStatus
		windowEnd    sql.NullString
		lastDecision sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.State,
		&s.ConfigID,
		&s.Period,
		&windowEnd,
		&s.RuntimeSeconds,
		&lastDecision,
		&s.Connected,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceStatus{}, nil
		}
		return models.DeviceStatus{}, err
	}
	s.WindowEnd = windowEnd.String
	s.LastDecision = lastDecision.String
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
