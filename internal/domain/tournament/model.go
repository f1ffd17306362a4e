package tournament

import "time"

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Tournament is the real-world event whose matches feed fantasy scoring.
// Only its status is consumed here; registration lives elsewhere.
type Tournament struct {
	ID        string
	Name      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Tournament) IsCompleted() bool {
	return t.Status == StatusCompleted
}
