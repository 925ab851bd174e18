package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "pelita_session", "test-secret", time.Hour, false)
}

func TestSessionPrincipalRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetPrincipal(Principal{
		UserID:      42,
		Roles:       []string{"teacher"},
		Permissions: []string{"student:view", "academic-calendar:view"},
	})

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	p := loaded.Principal()
	if !p.Authenticated() {
		t.Fatal("expected authenticated principal after reload")
	}
	if p.UserID != 42 {
		t.Fatalf("unexpected user id: %d", p.UserID)
	}
	if len(p.Permissions) != 2 || p.Permissions[0] != "student:view" {
		t.Fatalf("unexpected permissions: %v", p.Permissions)
	}
}

func TestSessionDestroyRemovesState(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetPrincipal(Principal{UserID: 7})

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec2, req, sess); err != nil {
		t.Fatalf("destroy commit: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Principal().Authenticated() {
		t.Fatal("expected anonymous session after destroy")
	}
}

func TestAnonymousSessionHasNoPrincipal(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess.Principal().Authenticated() {
		t.Fatal("fresh session must be anonymous")
	}
}
