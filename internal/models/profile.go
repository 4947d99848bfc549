package models

import "time"

// FilterProfile is a named, persisted filter set used by the watcher.
type FilterProfile struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Keyword   *string   `db:"keyword"`
	Company   *string   `db:"company"`
	Location  *string   `db:"location"`
	OrderBy   string    `db:"order_by"`
	MaxPages  int       `db:"max_pages"`
	UpdatedAt time.Time `db:"updated_at"`
}

type SeenJob struct {
	Profile string    `db:"profile"`
	JobID   int64     `db:"job_id"`
	SeenAt  time.Time `db:"seen_at"`
}
