package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Me returns the identity the server reads from the current token.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.doAuth(ctx, http.MethodGet, "/auth/me", nil, &id, http.StatusOK); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doAuth(ctx, http.MethodGet, "/projects", nil, &projects, http.StatusOK); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, p NewProject) (*Project, error) {
	var out Project
	if err := c.doAuth(ctx, http.MethodPost, "/projects", p, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]Task, error) {
	var tasks []Task
	if err := c.doAuth(ctx, http.MethodGet, "/tasks"+q.encode(), nil, &tasks, http.StatusOK); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*Task, error) {
	var out Task
	if err := c.doAuth(ctx, http.MethodPost, "/tasks", t, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskStatus moves a task; assignees may do this on tasks they do not own.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status string) (*Task, error) {
	var out Task
	path := fmt.Sprintf("/tasks/%d", id)
	body := map[string]string{"status": status}
	if err := c.doAuth(ctx, http.MethodPatch, path, body, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.doAuth(ctx, http.MethodGet, "/tags", nil, &tags, http.StatusOK); err != nil {
		return nil, err
	}
	return tags, nil
}

// ChangePassword changes the signed-in user's password. The server revokes
// older tokens and returns a fresh one, which replaces the stored session.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	s := c.Session()
	if s == nil {
		return ErrNotAuthenticated
	}

	var res authResult
	path := fmt.Sprintf("/users/%d/password", s.User.ID)
	body := map[string]string{"currentPassword": current, "newPassword": next}
	if err := c.doAuth(ctx, http.MethodPatch, path, body, &res, http.StatusOK); err != nil {
		return err
	}
	_, err := c.establish(res)
	return err
}

func (q TaskQuery) encode() string {
	v := url.Values{}
	if q.ProjectID > 0 {
		v.Set("projectId", strconv.FormatInt(q.ProjectID, 10))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.AssignedUserID > 0 {
		v.Set("assignedUserId", strconv.FormatInt(q.AssignedUserID, 10))
	}
	if q.TagID > 0 {
		v.Set("tagId", strconv.FormatInt(q.TagID, 10))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Mine {
		v.Set("mine", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
