package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	adminusers "userdesk/frontend/adminUsers"
)

func TestListSendsQueryAndReadsTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("_page") != "2" || q.Get("_limit") != "5" || q.Get("q") != "ana" {
			t.Errorf("unexpected query %v", q)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-Id")); err != nil {
			t.Errorf("expected uuid request id, got %q", r.Header.Get("X-Request-Id"))
		}
		w.Header().Set("X-Total-Count", "12")
		_ = json.NewEncoder(w).Encode([]adminusers.User{{ID: 7, Name: "Ana"}})
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	got, err := c.List(context.Background(), adminusers.ListQuery{Page: 2, Limit: 5, Q: "ana"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Total != 12 || len(got.Items) != 1 || got.Items[0].ID != 7 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestListWithoutTotalHeaderFallsBackToLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).List(context.Background(), adminusers.ListQuery{Page: 1, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Total != 2 {
		t.Fatalf("expected total 2, got %d", got.Total)
	}
}

func TestNon2xxBecomesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"user not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), 9)
	var f *adminusers.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %T %v", err, err)
	}
	if f.Status != http.StatusNotFound || err.Error() != "HTTP 404 - Not Found\nuser not found" {
		t.Fatalf("unexpected failure %q", err.Error())
	}
	if !errors.Is(err, adminusers.ErrNotFound) {
		t.Fatalf("expected 404 to match ErrNotFound")
	}
}

func TestCreateUpdateRemove(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
			var in adminusers.UserInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("decode: %v", err)
			}
			_ = json.NewEncoder(w).Encode(adminusers.User{ID: 3, Name: in.Name, Email: in.Email, Role: in.Role})
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	in := adminusers.UserInput{Name: "Ana Lima", Email: "ana@example.com", Role: adminusers.RoleEditor}
	created, err := c.Create(context.Background(), in)
	if err != nil || created.ID != 3 || created.Name != in.Name {
		t.Fatalf("create: %+v %v", created, err)
	}
	if _, err := c.Update(context.Background(), 3, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := c.Remove(context.Background(), 3); err != nil {
		t.Fatalf("remove: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"POST /users", "PUT /users/3", "DELETE /users/3"}
	if len(seen) != len(want) {
		t.Fatalf("unexpected requests %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("request %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).List(context.Background(), adminusers.ListQuery{Page: 1, Limit: 5})
	var f *adminusers.Failure
	if !errors.As(err, &f) || f.Status != 0 {
		t.Fatalf("expected status-less failure, got %v", err)
	}
}

func TestCancelledContextIsNotAFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := New(srv.URL).Get(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
