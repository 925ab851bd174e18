package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-edu/pelita/internal/auth"
	"github.com/pelita-edu/pelita/internal/shared"
	_ "github.com/pelita-edu/pelita/testing"
)

type fixtureRepo struct {
	user *auth.User
}

func (f *fixtureRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return f.user, nil
}

func (f *fixtureRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (f *fixtureRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

type fixtureResolver struct {
	principal shared.Principal
}

func (f *fixtureResolver) ResolvePrincipal(ctx context.Context, userID int64) (shared.Principal, error) {
	p := f.principal
	p.UserID = userID
	return p, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sessionMiddleware mirrors the app middleware: load the session, stash it in
// context, commit after the handler.
func sessionMiddleware(sm *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sm.Load(r.Context(), r)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx := shared.ContextWithSession(r.Context(), sess)
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, r.WithContext(ctx))
			if err := sm.Commit(ctx, w, r, sess); err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for k, vals := range rec.Header() {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	}
}

func newTestRouter(t *testing.T, repo auth.Repository, resolver auth.PrincipalResolver) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(testLogger(), auth.NewService(repo, resolver), sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Use(sessionMiddleware(sessionManager))
	r.Route("/auth", handler.MountRoutes)
	return r, sessionManager
}

func TestLoginSetsPrincipalSnapshot(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("rahasia-123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &fixtureRepo{user: &auth.User{ID: 7, Email: "guru@pelita.sch.id", Name: "Bu Sari", PasswordHash: string(hashed), IsActive: true}}
	resolver := &fixtureResolver{principal: shared.Principal{
		Roles:       []string{"teacher"},
		Permissions: []string{"user:read", "academic-calendar:view"},
	}}
	router, _ := newTestRouter(t, repo, resolver)

	body := `{"email":"guru@pelita.sch.id","password":"rahasia-123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		UserID      int64    `json:"user_id"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 7 {
		t.Fatalf("expected user 7, got %d", payload.UserID)
	}
	if len(payload.Roles) != 1 || payload.Roles[0] != "teacher" {
		t.Fatalf("unexpected roles: %v", payload.Roles)
	}
	if len(payload.Permissions) != 2 {
		t.Fatalf("unexpected permissions: %v", payload.Permissions)
	}

	var sessionCookie *http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected a session cookie after login")
	}

	// The snapshot survives the round trip: /auth/me reads it back from redis.
	meReq := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	meReq.AddCookie(sessionCookie)
	meRes := httptest.NewRecorder()
	router.ServeHTTP(meRes, meReq)
	if meRes.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", meRes.Code)
	}
	if !strings.Contains(meRes.Body.String(), "academic-calendar:view") {
		t.Fatalf("principal snapshot missing from /auth/me: %s", meRes.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("rahasia-123"), bcrypt.MinCost)
	repo := &fixtureRepo{user: &auth.User{ID: 7, Email: "guru@pelita.sch.id", PasswordHash: string(hashed), IsActive: true}}
	router, _ := newTestRouter(t, repo, &fixtureResolver{})

	body := `{"email":"guru@pelita.sch.id","password":"salah-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Email atau password tidak valid") {
		t.Fatalf("expected generic credential error, got: %s", res.Body.String())
	}
}

func TestMeUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t, &fixtureRepo{}, &fixtureResolver{})
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}
