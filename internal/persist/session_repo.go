package persist

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SessionRow is the summary of one finished game.
type SessionRow struct {
	ID             int64
	ServerName     string
	Seed           int64
	Outcome        string
	Kills          int
	Waves          int
	PeakPopulation int
	DamageTaken    int
	ShotsFired     int
	StartedAt      time.Time
	EndedAt        time.Time
}

// Validate rejects rows the sessions table would refuse.
func (r *SessionRow) Validate() error {
	switch {
	case r.Outcome == "":
		return errors.New("session outcome is required")
	case r.StartedAt.IsZero() || r.EndedAt.IsZero():
		return errors.New("session start and end times are required")
	case r.EndedAt.Before(r.StartedAt):
		return fmt.Errorf("session ended %s before it started %s", r.EndedAt, r.StartedAt)
	case r.Kills < 0 || r.Waves < 0 || r.PeakPopulation < 0:
		return errors.New("session counters cannot be negative")
	}
	return nil
}

// Duration is the wall time between start and end.
func (r *SessionRow) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// Headline is the one-line form shown when listing past sessions.
func (r *SessionRow) Headline() string {
	return fmt.Sprintf("%s %s: %d kills, %d waves, peak %d (%s)",
		r.EndedAt.Format("2006-01-02 15:04"), r.Outcome, r.Kills, r.Waves,
		r.PeakPopulation, r.Duration().Round(time.Second))
}

type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Save inserts the row and fills in its ID.
func (r *SessionRepo) Save(ctx context.Context, row *SessionRow) error {
	if err := row.Validate(); err != nil {
		return err
	}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO sessions (server_name, seed, outcome, kills, waves, peak_population,
		                       damage_taken, shots_fired, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		row.ServerName, row.Seed, row.Outcome, row.Kills, row.Waves, row.PeakPopulation,
		row.DamageTaken, row.ShotsFired, row.StartedAt, row.EndedAt,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Recent returns the latest sessions, newest first.
func (r *SessionRepo) Recent(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, server_name, seed, outcome, kills, waves, peak_population,
		        damage_taken, shots_fired, started_at, ended_at
		 FROM sessions ORDER BY ended_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.ID, &s.ServerName, &s.Seed, &s.Outcome, &s.Kills, &s.Waves,
			&s.PeakPopulation, &s.DamageTaken, &s.ShotsFired, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
