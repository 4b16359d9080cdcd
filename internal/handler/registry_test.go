package handler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/orchestrator"
)

func testFactory(created *atomic.Int64) func(id string) *orchestrator.Session {
	return func(id string) *orchestrator.Session {
		if created != nil {
			created.Add(1)
		}
		return orchestrator.NewSession(id, orchestrator.New(config.DefaultScoring()), time.Hour)
	}
}

func TestRegistryGetReusesSession(t *testing.T) {
	var created atomic.Int64
	r := NewRegistry(testFactory(&created), time.Hour)
	defer r.Close()

	first := r.Get("sess-1")
	second := r.Get("sess-1")

	if first != second {
		t.Error("same session ID must map to the same session")
	}
	if created.Load() != 1 {
		t.Errorf("factory ran %d times, want 1", created.Load())
	}
	if other := r.Get("sess-2"); other == first {
		t.Error("distinct IDs must get distinct sessions")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(testFactory(nil), time.Hour)
	defer r.Close()

	if _, ok := r.Lookup("absent"); ok {
		t.Error("lookup of unknown ID must miss")
	}

	sess := r.Get("sess-1")
	got, ok := r.Lookup("sess-1")
	if !ok || got != sess {
		t.Error("lookup must return the registered session")
	}
}

func TestRegistryConcurrentGet(t *testing.T) {
	r := NewRegistry(testFactory(nil), time.Hour)
	defer r.Close()

	const workers = 16
	sessions := make([]*orchestrator.Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = r.Get("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("racing Gets returned different sessions")
		}
	}
}

func TestRegistryCloseIdempotent(t *testing.T) {
	r := NewRegistry(testFactory(nil), time.Hour)
	r.Get("sess-1")
	r.Close()
	r.Close() // must not panic

	if _, ok := r.Lookup("sess-1"); ok {
		t.Error("sessions must be dropped on close")
	}
}
