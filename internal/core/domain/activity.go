package domain

import "time"

// ActivityAction names what happened to a task.
type ActivityAction string

const (
	ActivityCreated       ActivityAction = "created"
	ActivityUpdated       ActivityAction = "updated"
	ActivityStatusChanged ActivityAction = "status_changed"
	ActivityAssigned      ActivityAction = "assigned"
	ActivityDeleted       ActivityAction = "deleted"
)

// TaskActivity is one entry of a task's audit trail.
type TaskActivity struct {
	TaskID     int64          `json:"taskId" bson:"task_id"`
	ProjectID  int64          `json:"projectId" bson:"project_id"`
	ActorID    int64          `json:"actorId" bson:"actor_id"`
	Action     ActivityAction `json:"action" bson:"action"`
	FromStatus TaskStatus     `json:"fromStatus,omitempty" bson:"from_status,omitempty"`
	ToStatus   TaskStatus     `json:"toStatus,omitempty" bson:"to_status,omitempty"`
	AssigneeID *int64         `json:"assigneeId,omitempty" bson:"assignee_id,omitempty"`
	At         time.Time      `json:"at" bson:"at"`
}
