package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/pkg/client"
)

// apiStub answers the client commands with canned bodies and records what it
// was asked.
type apiStub struct {
	mu      sync.Mutex
	queries []string
	bodies  []map[string]any
	expired bool
}

func (s *apiStub) handler() http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assignee := int64(3)

	mux := http.NewServeMux()
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			expired := s.expired
			s.queries = append(s.queries, r.URL.RawQuery)
			if r.Body != nil {
				var body map[string]any
				if json.NewDecoder(r.Body).Decode(&body) == nil {
					s.bodies = append(s.bodies, body)
				}
			}
			s.mu.Unlock()
			if expired || r.Header.Get("Authorization") != "Bearer stored-token" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token has been revoked"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /auth/me", guard(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, client.Identity{ID: 7, Email: "dev@example.com", Role: "user"})
	}))
	mux.HandleFunc("GET /projects", guard(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []client.Project{{ID: 1, Title: "Website", OwnerID: 7, CreatedAt: created}})
	}))
	mux.HandleFunc("POST /projects", guard(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, client.Project{ID: 2, Title: "Launch", OwnerID: 7, CreatedAt: created})
	}))
	mux.HandleFunc("GET /tasks", guard(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []client.Task{{
			ID: 5, Title: "Write copy", Status: client.StatusPending, ProjectID: 1,
			AssignedUserID: &assignee, Tags: []client.Tag{{ID: 1, Name: "urgent"}, {ID: 2, Name: "docs"}},
		}})
	}))
	mux.HandleFunc("POST /tasks", guard(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, client.Task{ID: 6, Title: "Ship it", Status: client.StatusPending, ProjectID: 2})
	}))
	mux.HandleFunc("PATCH /tasks/{id}", guard(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, client.Task{ID: 5, Title: "Write copy", Status: client.StatusCompleted, ProjectID: 1})
	}))
	return mux
}

func (s *apiStub) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func (s *apiStub) lastBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[len(s.bodies)-1]
}

type cliEnv struct {
	server  string
	session string
	stub    *apiStub
}

func newCLIEnv(t *testing.T, loggedIn bool) *cliEnv {
	t.Helper()

	stub := &apiStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	env := &cliEnv{
		server:  srv.URL,
		session: filepath.Join(t.TempDir(), "state", "session.json"),
		stub:    stub,
	}
	if loggedIn {
		err := client.NewFileStore(env.session).Save(&client.Session{
			Token: "stored-token",
			User:  client.User{ID: 7, Email: "dev@example.com", Role: "user"},
		})
		require.NoError(t, err)
	}
	return env
}

func (e *cliEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := RootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--server", e.server, "--session", e.session}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestWhoami_RequiresSession(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, false)
	_, err := env.run("whoami")
	require.ErrorContains(t, err, "not logged in")
}

func TestWhoami_PrintsIdentity(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	out, err := env.run("whoami")
	require.NoError(t, err)
	require.Contains(t, out, "dev@example.com (id 7, user)")
}

func TestWhoami_ExpiredSessionIsCleared(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	env.stub.expired = true

	_, err := env.run("whoami")
	require.EqualError(t, err, "session expired; run `taskhub login` again")

	s, err := client.NewFileStore(env.session).Load()
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestProjects_ListAndCreate(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)

	out, err := env.run("projects")
	require.NoError(t, err)
	require.Contains(t, out, "TITLE")
	require.Contains(t, out, "Website")
	require.Contains(t, out, "2024-03-01")

	out, err = env.run("projects", "create", "Launch", "-d", "go live")
	require.NoError(t, err)
	require.Contains(t, out, "Launch")
	require.Equal(t, map[string]any{"title": "Launch", "description": "go live"}, env.stub.lastBody())
}

func TestTasks_ListSendsFilters(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	out, err := env.run("tasks", "--project", "1", "--status", "pending", "--tag", "2", "--mine")
	require.NoError(t, err)
	require.Equal(t, "mine=true&projectId=1&status=pending&tagId=2", env.stub.lastQuery())
	require.Contains(t, out, "Write copy")
	require.Contains(t, out, "urgent,docs")
}

func TestTasks_Create(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	out, err := env.run("tasks", "create", "Ship it", "--project", "2", "--assignee", "3", "--tag", "1,2")
	require.NoError(t, err)
	require.Contains(t, out, "Ship it")

	body := env.stub.lastBody()
	require.Equal(t, "Ship it", body["title"])
	require.EqualValues(t, 2, body["projectId"])
	require.EqualValues(t, 3, body["assignedUserId"])
	require.Equal(t, []any{float64(1), float64(2)}, body["tagIds"])
}

func TestTasks_CreateNeedsProject(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	_, err := env.run("tasks", "create", "Orphan")
	require.ErrorContains(t, err, `"project" not set`)
}

func TestTasks_Status(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	out, err := env.run("tasks", "status", "5", "completed")
	require.NoError(t, err)
	require.Contains(t, out, "completed")
	require.Equal(t, map[string]any{"status": "completed"}, env.stub.lastBody())

	_, err = env.run("tasks", "status", "five", "completed")
	require.EqualError(t, err, `invalid task id "five"`)
}

func TestLogout_RemovesSession(t *testing.T) {
	t.Parallel()

	env := newCLIEnv(t, true)
	out, err := env.run("logout")
	require.NoError(t, err)
	require.Equal(t, "Logged out\n", out)

	_, err = os.Stat(env.session)
	require.ErrorIs(t, err, os.ErrNotExist)

	// Nothing stored is not an error.
	_, err = env.run("logout")
	require.NoError(t, err)
}

func TestMigrate_UpAndDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.db")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")

	env := &cliEnv{server: defaultServer, session: filepath.Join(t.TempDir(), "session.json")}

	_, err := env.run("migrate")
	require.NoError(t, err)
	require.FileExists(t, path)

	_, err = env.run("migrate", "down")
	require.NoError(t, err)

	_, err = env.run("migrate", "sideways")
	require.Error(t, err)
}

func TestUserCreate_RejectsUnknownRole(t *testing.T) {
	env := &cliEnv{server: defaultServer, session: filepath.Join(t.TempDir(), "session.json")}
	_, err := env.run("user", "create", "ops@example.com", "--role", "owner")
	require.Error(t, err)
}
