package domain

import "time"

// Tag is a globally unique label attachable to many tasks.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
