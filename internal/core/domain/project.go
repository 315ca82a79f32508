package domain

import "time"

// Project groups tasks under a single owning user.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CanModify reports whether id may change or delete the project.
func (p *Project) CanModify(id Identity) bool {
	return id.IsAdmin() || p.OwnerID == id.ID
}
