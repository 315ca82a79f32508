package client

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ProfilePhoto *string   `json:"profilePhoto"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == "admin" }

// Identity is what the server decoded from the caller's token.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	ProjectID      int64     `json:"projectId"`
	AssignedUserID *int64    `json:"assignedUserId"`
	Tags           []Tag     `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// RegisterRequest is the body of POST /auth/register. AdminCode is only
// needed when Role is "admin".
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role,omitempty"`
	AdminCode       string `json:"adminCode,omitempty"`
}

type NewProject struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerID     int64  `json:"ownerId,omitempty"`
}

type NewTask struct {
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Status         string  `json:"status,omitempty"`
	ProjectID      int64   `json:"projectId"`
	AssignedUserID *int64  `json:"assignedUserId,omitempty"`
	TagIDs         []int64 `json:"tagIds,omitempty"`
}

// TaskQuery narrows ListTasks. Zero values are left out of the query.
type TaskQuery struct {
	ProjectID      int64
	Status         string
	AssignedUserID int64
	TagID          int64
	Search         string
	Mine           bool
}

// authResult is the body returned by login, register and password change.
type authResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}
