package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type stubUserService struct {
	patch   ports.UserPatch
	role    string
	current string
	next    string
	id      int64
	err     error
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return []*domain.User{}, s.err
}

func (s *stubUserService) Get(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	s.id = id
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id}, nil
}

func (s *stubUserService) Update(ctx context.Context, actor domain.Identity, id int64, patch ports.UserPatch) (*domain.User, error) {
	s.id, s.patch = id, patch
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id}, nil
}

func (s *stubUserService) ChangeRole(ctx context.Context, actor domain.Identity, id int64, role string) (*domain.User, error) {
	s.id, s.role = id, role
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Role: role}, nil
}

func (s *stubUserService) ChangePassword(ctx context.Context, actor domain.Identity, id int64, current, next string) (*ports.AuthResult, error) {
	s.id, s.current, s.next = id, current, next
	if s.err != nil {
		return nil, s.err
	}
	return &ports.AuthResult{AccessToken: "fresh", User: &domain.User{ID: id}}, nil
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	s.id = id
	return s.err
}

func TestUserHandler_UpdateClearsPhoto(t *testing.T) {
	svc := &stubUserService{}
	c, rec := newContext(http.MethodPatch, "/users/1", `{"profilePhoto":""}`)

	if err := NewUserHandler(svc).Update(withParam(as(c, alice), "id", "1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.patch.Email != nil {
		t.Fatalf("email should be untouched: %+v", svc.patch)
	}
	if svc.patch.ProfilePhoto == nil || *svc.patch.ProfilePhoto != "" {
		t.Fatalf("expected an explicit empty photo: %+v", svc.patch)
	}
}

func TestUserHandler_UpdateRejectsRole(t *testing.T) {
	c, _ := newContext(http.MethodPatch, "/users/1", `{"role":"admin"}`)
	err := NewUserHandler(&stubUserService{}).Update(withParam(as(c, alice), "id", "1"))
	expectHTTPError(t, err, http.StatusBadRequest)
}

func TestUserHandler_ChangeRole(t *testing.T) {
	svc := &stubUserService{}
	c, _ := newContext(http.MethodPatch, "/users/1/role", `{"role":"admin"}`)

	if err := NewUserHandler(svc).ChangeRole(withParam(as(c, admin), "id", "1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.id != 1 || svc.role != domain.RoleAdmin {
		t.Fatalf("unexpected call: id=%d role=%q", svc.id, svc.role)
	}

	c, _ = newContext(http.MethodPatch, "/users/1/role", `{"role":"superuser"}`)
	expectHTTPError(t, NewUserHandler(svc).ChangeRole(withParam(as(c, admin), "id", "1")), http.StatusBadRequest)
}

func TestUserHandler_ChangePasswordPolicy(t *testing.T) {
	svc := &stubUserService{}
	c, _ := newContext(http.MethodPatch, "/users/1/password", `{"currentPassword":"Abc123!@","newPassword":"short"}`)
	expectHTTPError(t, NewUserHandler(svc).ChangePassword(withParam(as(c, alice), "id", "1")), http.StatusBadRequest)

	c, rec := newContext(http.MethodPatch, "/users/1/password", `{"currentPassword":"Abc123!@","newPassword":"Xyz789#$"}`)
	if err := NewUserHandler(svc).ChangePassword(withParam(as(c, alice), "id", "1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.current != "Abc123!@" || svc.next != "Xyz789#$" {
		t.Fatalf("unexpected result: %d %q %q", rec.Code, svc.current, svc.next)
	}
}

func TestUserHandler_DeleteErrors(t *testing.T) {
	svc := &stubUserService{err: domain.ErrCannotDeleteSelf}
	c, _ := newContext(http.MethodDelete, "/users/9", "")

	err := NewUserHandler(svc).Delete(withParam(as(c, admin), "id", "9"))
	if !errors.Is(err, domain.ErrCannotDeleteSelf) {
		t.Fatalf("expected ErrCannotDeleteSelf, got %v", err)
	}
}
