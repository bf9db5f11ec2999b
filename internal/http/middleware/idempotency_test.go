package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/diagnosis/stayvista-server/internal/repository"
)

type memIdempotency struct {
	mu   sync.Mutex
	data map[string]repository.StoredResponse
}

func (m *memIdempotency) Get(ctx context.Context, key string) (*repository.StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *memIdempotency) Save(ctx context.Context, key string, resp repository.StoredResponse, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		m.data[key] = resp
	}
	return nil
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	store := &memIdempotency{data: map[string]repository.StoredResponse{}}
	calls := 0
	h := Idempotency(store, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/booking", nil)
		req.Header.Set("Idempotency-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("k1")
	second := send("k1")
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replay, got %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replay header")
	}

	send("k2")
	if calls != 2 {
		t.Fatalf("expected distinct key to reach handler, got %d calls", calls)
	}
}

func TestIdempotency_NilStorePassesThrough(t *testing.T) {
	calls := 0
	h := Idempotency(nil, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/booking", nil)
		req.Header.Set("Idempotency-Key", "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
