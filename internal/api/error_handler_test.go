package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "email is required"), http.StatusBadRequest, "email is required"},
		{"validation", domain.ErrPasswordMismatch, http.StatusBadRequest, "passwords do not match"},
		{"ad hoc validation", domain.Invalid("title must not be empty"), http.StatusBadRequest, "title must not be empty"},
		{"conflict", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"email taken at sign-up", domain.ErrEmailTaken, http.StatusBadRequest, "user already exists"},
		{"password over bcrypt limit", domain.ErrPasswordTooLong, http.StatusBadRequest, "password must be at most 72 bytes"},
		{"unauthenticated", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"activation code", domain.ErrInvalidActivationCode, http.StatusUnauthorized, "invalid admin activation code"},
		{"forbidden", domain.ErrNotPermitted, http.StatusForbidden, "access forbidden"},
		{"not found", domain.ErrTaskNotFound, http.StatusNotFound, "task not found"},
		{"wrapped", fmt.Errorf("load project: %w", domain.ErrProjectNotFound), http.StatusNotFound, "project not found"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = c.String(http.StatusOK, "done")
	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late failure"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
