package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// newEcho mirrors the router's request decoding setup.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.JSONSerializer = StrictJSONSerializer{}
	return e
}

// newContext builds a request context. A non-empty body is sent as JSON.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return newEcho().NewContext(req, rec), rec
}

// as attaches id the way the Auth middleware does.
func as(c echo.Context, id domain.Identity) echo.Context {
	c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), id)))
	return c
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// expectHTTPError asserts err is an *echo.HTTPError with the given code.
func expectHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError with %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
	return he
}

var (
	alice = domain.Identity{ID: 1, Email: "alice@x.com", Role: domain.RoleUser}
	admin = domain.Identity{ID: 9, Email: "root@x.com", Role: domain.RoleAdmin}
)

func TestCtxIdentity_Missing(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "")
	_, err := ctxIdentity(c)
	expectHTTPError(t, err, http.StatusUnauthorized)
}

func TestPathID(t *testing.T) {
	for _, v := range []string{"", "abc", "0", "-3", "1.5"} {
		c, _ := newContext(http.MethodGet, "/", "")
		_, err := pathID(withParam(c, "id", v), "id")
		he := expectHTTPError(t, err, http.StatusBadRequest)
		if he.Message != "invalid id" {
			t.Fatalf("%q: unexpected message %v", v, he.Message)
		}
	}

	c, _ := newContext(http.MethodGet, "/", "")
	id, err := pathID(withParam(c, "id", "42"), "id")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
}

func TestStrictJSONSerializer(t *testing.T) {
	tests := map[string]struct {
		body    string
		wantMsg string
	}{
		"unknown field": {`{"email":"a@x.com","password":"x","isAdmin":true}`, `invalid payload: json: unknown field "isAdmin"`},
		"wrong type":    {`{"email":42,"password":"x"}`, "email must be of type string"},
		"malformed":     {`{"email":`, "invalid payload: unexpected EOF"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/auth/login", tt.body)
			var req loginRequest
			err := c.Bind(&req)
			he := expectHTTPError(t, err, http.StatusBadRequest)
			if he.Message != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, he.Message)
			}
		})
	}
}
