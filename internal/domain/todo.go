package domain

import "time"

// Todo is a single todo item owned by the user who created it.
//
// CompletedAt is set (unix milliseconds) exactly when Completed is true and
// nil otherwise.
type Todo struct {
	ID          string
	Text        string
	Completed   bool
	CompletedAt *int64
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
