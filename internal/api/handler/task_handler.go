package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    string  `json:"description" validate:"max=5000"`
	Status         string  `json:"status"`
	ProjectID      int64   `json:"projectId" validate:"required,gt=0"`
	AssignedUserID *int64  `json:"assignedUserId"`
	TagIDs         []int64 `json:"tagIds" validate:"max=50"`
}

// updateTaskRequest: assignedUserId 0 unassigns, tagIds replaces the set.
type updateTaskRequest struct {
	Title          *string  `json:"title" validate:"omitempty,max=200"`
	Description    *string  `json:"description" validate:"omitempty,max=5000"`
	Status         *string  `json:"status"`
	AssignedUserID *int64   `json:"assignedUserId"`
	TagIDs         *[]int64 `json:"tagIds"`
}

// taskFilter reads the listing query string. mine=true narrows to tasks the
// caller owns (via the project) or is assigned to.
func taskFilter(c echo.Context, actor domain.Identity) (ports.TaskFilter, error) {
	var (
		f      ports.TaskFilter
		status string
		mine   bool
	)
	err := echo.QueryParamsBinder(c).
		Int64("projectId", &f.ProjectID).
		String("status", &status).
		Int64("assignedUserId", &f.AssignedUserID).
		Int64("tagId", &f.TagID).
		String("q", &f.Search).
		Bool("mine", &mine).
		BindError()
	if err != nil {
		var msg string
		if be, ok := err.(*echo.BindingError); ok {
			msg = "invalid query parameter " + be.Field
		} else {
			msg = "invalid query parameters"
		}
		return f, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	f.Status = domain.TaskStatus(status)
	if mine {
		f.VisibleTo = actor.ID
	}
	return f, nil
}

// List handles GET /tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId       query     int     false  "Project"
// @Param        status          query     string  false  "pending, in-progress or completed"
// @Param        assignedUserId  query     int     false  "Assignee"
// @Param        tagId           query     int     false  "Tag"
// @Param        q               query     string  false  "Search in title and description"
// @Param        mine            query     bool    false  "Only tasks I own or am assigned to"
// @Success      200             {array}   domain.Task
// @Failure      400             {object}  errorBody
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	filter, err := taskFilter(c, actor)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Stats handles GET /tasks/stats; it accepts the same filters as List.
//
// @Summary      Task counts per status
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  query     int   false  "Project"
// @Param        mine       query     bool  false  "Only tasks I own or am assigned to"
// @Success      200        {object}  domain.TaskStats
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	filter, err := taskFilter(c, actor)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), actor, ports.NewTask{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		ProjectID:      req.ProjectID,
		AssignedUserID: req.AssignedUserID,
		TagIDs:         req.TagIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      404  {object}  errorBody
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PATCH /tasks/:id.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), actor, id, ports.TaskPatch{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		AssignedUserID: req.AssignedUserID,
		TagIDs:         req.TagIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Activity handles GET /tasks/:id/activity.
//
// @Summary      Task audit trail, newest first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {array}   domain.TaskActivity
// @Failure      404  {object}  errorBody
// @Router       /tasks/{id}/activity [get]
func (h *TaskHandler) Activity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.service.Activity(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
