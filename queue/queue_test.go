package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/rpcshield/clock"
)

// recorder captures event hook invocations for assertions.
type recorder struct {
	mu        sync.Mutex
	enqueued  []string
	dequeued  []string
	succeeded []string
	failed    []string
	exhausted []string
	errors    []string
	attempts  map[string]int
	eligible  map[string]time.Time
}

func newRecorder() *recorder {
	return &recorder{
		attempts: make(map[string]int),
		eligible: make(map[string]time.Time),
	}
}

func (r *recorder) OnEnqueued(jobID string, attempts int, nextEligibleAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueued = append(r.enqueued, jobID)
	r.attempts[jobID] = attempts
	r.eligible[jobID] = nextEligibleAt
}

func (r *recorder) OnDequeued(jobID string, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dequeued = append(r.dequeued, jobID)
}

func (r *recorder) OnBatchStart(jobCount int)                   {}
func (r *recorder) OnBatchComplete(successCount, failCount int) {}

func (r *recorder) OnJobSuccess(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, jobID)
}

func (r *recorder) OnJobFailure(jobID string, sanitizedError string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, jobID)
	r.errors = append(r.errors, sanitizedError)
}

func (r *recorder) OnJobExhausted(jobID string, attempts int, sanitizedError string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted = append(r.exhausted, jobID)
	r.attempts[jobID] = attempts
	r.errors = append(r.errors, sanitizedError)
}

func newTestQueue(t *testing.T, config Config) (*Queue, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Unix(1000, 0))
	config.Clock = fake
	q, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q, fake
}

func TestQueueFIFOOrder(t *testing.T) {
	q, _ := newTestQueue(t, Config{})
	ctx := context.Background()

	a := NewJob([]byte("a"))
	b := NewJob([]byte("b"))
	c := NewJob([]byte("c"))
	for _, j := range []Job{a, b, c} {
		if err := q.Enqueue(ctx, j); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	for i, want := range []string{a.ID, b.ID, c.ID} {
		job, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue %d: empty", i)
		}
		if job.ID != want {
			t.Errorf("Dequeue %d = %s, want %s", i, job.ID, want)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on empty queue should report false")
	}
}

func TestQueueSkipsIneligibleJobs(t *testing.T) {
	q, fake := newTestQueue(t, Config{})
	ctx := context.Background()

	early := NewJob([]byte("early"))
	early.NextEligibleAt = fake.Now().Add(time.Minute)
	ready := NewJob([]byte("ready"))

	q.Enqueue(ctx, early)
	q.Enqueue(ctx, ready)

	// The first job is not yet eligible; the second is returned instead and
	// the first stays in place.
	job, ok := q.Dequeue()
	if !ok || job.ID != ready.ID {
		t.Fatalf("Dequeue = %v/%v, want the eligible job", job.ID, ok)
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}

	if _, ok := q.Dequeue(); ok {
		t.Fatal("no job should be eligible yet")
	}

	fake.Advance(time.Minute)
	job, ok = q.Dequeue()
	if !ok || job.ID != early.ID {
		t.Errorf("Dequeue after advance = %v/%v, want the delayed job", job.ID, ok)
	}
}

func TestQueueEligibleExactlyAtBoundary(t *testing.T) {
	q, fake := newTestQueue(t, Config{})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	job.NextEligibleAt = fake.Now().Add(time.Second)
	q.Enqueue(ctx, job)

	fake.Advance(time.Second)
	if _, ok := q.Dequeue(); !ok {
		t.Error("job should be eligible exactly at its eligibility time")
	}
}

func TestQueueRecordFailureSchedule(t *testing.T) {
	rec := newRecorder()
	q, fake := newTestQueue(t, Config{
		MaxAttempts: 5,
		BaseBackoff: time.Second,
		MaxBackoff:  time.Minute,
		Events:      rec,
	})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)
	got, _ := q.Dequeue()

	q.RecordFailure(got, errors.New("submission failed"))

	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after re-enqueue", q.Len())
	}
	if rec.attempts[job.ID] != 1 {
		t.Errorf("attempts = %d, want 1", rec.attempts[job.ID])
	}
	// First failure: eligible after base*2^1.
	want := fake.Now().Add(2 * time.Second)
	if !rec.eligible[job.ID].Equal(want) {
		t.Errorf("next eligible = %v, want %v", rec.eligible[job.ID], want)
	}

	// Not eligible until the backoff elapses.
	if _, ok := q.Dequeue(); ok {
		t.Fatal("job must not be eligible before its backoff elapses")
	}
	fake.Advance(2 * time.Second)
	next, ok := q.Dequeue()
	if !ok {
		t.Fatal("job should be eligible after backoff")
	}
	if next.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", next.Attempts)
	}
	if next.ID != job.ID {
		t.Errorf("retry changed job ID: %s != %s", next.ID, job.ID)
	}
}

func TestQueueBackoffCapped(t *testing.T) {
	rec := newRecorder()
	q, fake := newTestQueue(t, Config{
		MaxAttempts: 20,
		BaseBackoff: time.Second,
		MaxBackoff:  8 * time.Second,
		Events:      rec,
	})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)

	// Fail repeatedly; the schedule is 2s, 4s, 8s, then capped at 8s.
	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for _, wantDelay := range wantDelays {
		fake.Advance(time.Hour) // make whatever is queued eligible
		got, ok := q.Dequeue()
		if !ok {
			t.Fatal("expected an eligible job")
		}
		q.RecordFailure(got, errors.New("fail"))
		want := fake.Now().Add(wantDelay)
		if !rec.eligible[job.ID].Equal(want) {
			t.Errorf("attempt %d: next eligible = %v, want %v", got.Attempts+1, rec.eligible[job.ID], want)
		}
	}
}

func TestQueueExhaustionDropsJob(t *testing.T) {
	rec := newRecorder()
	q, fake := newTestQueue(t, Config{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Events:      rec,
	})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)

	for i := 0; i < 3; i++ {
		fake.Advance(time.Hour)
		got, ok := q.Dequeue()
		if !ok {
			t.Fatalf("iteration %d: expected an eligible job", i)
		}
		q.RecordFailure(got, errors.New("fail"))
	}

	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0 after exhaustion", q.Len())
	}
	if len(rec.exhausted) != 1 || rec.exhausted[0] != job.ID {
		t.Errorf("exhausted = %v, want [%s]", rec.exhausted, job.ID)
	}
	if rec.attempts[job.ID] != 3 {
		t.Errorf("exhausted attempts = %d, want 3", rec.attempts[job.ID])
	}
}

func TestQueueExhaustionSanitizesError(t *testing.T) {
	rec := newRecorder()
	q, _ := newTestQueue(t, Config{MaxAttempts: 1, Events: rec})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)
	got, _ := q.Dequeue()

	q.RecordFailure(got, errors.New("key 4f3edf983ac636a65a842ce7c78d9aa706d3b113bce9c46f30d7d21715b23b1d rejected"))

	if len(rec.errors) != 1 {
		t.Fatalf("expected 1 error string, got %d", len(rec.errors))
	}
	if rec.errors[0] != "key [REDACTED] rejected" {
		t.Errorf("error not sanitized: %q", rec.errors[0])
	}
}

func TestQueueDedupSuppressesDuplicate(t *testing.T) {
	q, _ := newTestQueue(t, Config{Dedup: NewMemoryDedupStore()})
	ctx := context.Background()

	a := NewJob([]byte("payload")).WithIdempotencyKey("tx-1")
	b := NewJob([]byte("payload")).WithIdempotencyKey("tx-1")

	if err := q.Enqueue(ctx, a); err != nil {
		t.Fatalf("Enqueue a: %v", err)
	}
	if err := q.Enqueue(ctx, b); err != nil {
		t.Fatalf("Enqueue b: %v", err)
	}

	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1: duplicate key must be a no-op", q.Len())
	}
}

func TestQueueDedupDistinctKeys(t *testing.T) {
	q, _ := newTestQueue(t, Config{Dedup: NewMemoryDedupStore()})
	ctx := context.Background()

	q.Enqueue(ctx, NewJob([]byte("p")).WithIdempotencyKey("tx-1"))
	q.Enqueue(ctx, NewJob([]byte("p")).WithIdempotencyKey("tx-2"))

	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
}

func TestQueueDedupIgnoresEmptyKey(t *testing.T) {
	q, _ := newTestQueue(t, Config{Dedup: NewMemoryDedupStore()})
	ctx := context.Background()

	q.Enqueue(ctx, NewJob([]byte("p")))
	q.Enqueue(ctx, NewJob([]byte("p")))

	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2: jobs without keys never deduplicate", q.Len())
	}
}

func TestQueueRetryBypassesDedup(t *testing.T) {
	q, fake := newTestQueue(t, Config{
		MaxAttempts: 3,
		Dedup:       NewMemoryDedupStore(),
	})
	ctx := context.Background()

	job := NewJob([]byte("p")).WithIdempotencyKey("tx-1")
	q.Enqueue(ctx, job)
	got, _ := q.Dequeue()

	// The key was recorded on first enqueue; the retry must still land.
	q.RecordFailure(got, errors.New("fail"))
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1: retry suppressed by its own dedup key", q.Len())
	}

	fake.Advance(time.Hour)
	if _, ok := q.Dequeue(); !ok {
		t.Error("retried job should be dequeueable")
	}
}

func TestQueueDedupStoreError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	q, _ := newTestQueue(t, Config{Dedup: failingDedup{err: storeErr}})

	err := q.Enqueue(context.Background(), NewJob(nil).WithIdempotencyKey("k"))
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error surfaced, got %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0 after failed enqueue", q.Len())
	}
}

type failingDedup struct{ err error }

func (f failingDedup) Seen(context.Context, string) (bool, error) { return false, f.err }
func (f failingDedup) MarkSeen(context.Context, string) error     { return f.err }

// overlapDedup wraps a store and records whether two callers were ever
// inside it at the same time. Seen dawdles to widen any race window.
type overlapDedup struct {
	inner   DedupStore
	mu      sync.Mutex
	active  int
	overlap bool
}

func (s *overlapDedup) enter() {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.mu.Unlock()
}

func (s *overlapDedup) exit() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

func (s *overlapDedup) Seen(ctx context.Context, key string) (bool, error) {
	s.enter()
	defer s.exit()
	time.Sleep(time.Millisecond)
	return s.inner.Seen(ctx, key)
}

func (s *overlapDedup) MarkSeen(ctx context.Context, key string) error {
	s.enter()
	defer s.exit()
	return s.inner.MarkSeen(ctx, key)
}

func TestQueueConcurrentEnqueueSameKey(t *testing.T) {
	store := &overlapDedup{inner: NewMemoryDedupStore()}
	q, _ := newTestQueue(t, Config{Dedup: store})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := q.Enqueue(ctx, NewJob([]byte("p")).WithIdempotencyKey("tx-1")); err != nil {
				t.Errorf("Enqueue: %v", err)
			}
		}()
	}
	wg.Wait()

	// Exactly one enqueue may land: a second caller must never observe the
	// key as unseen, no matter how the goroutines interleave.
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1 after concurrent enqueues of one key", q.Len())
	}
	if store.overlap {
		t.Error("dedup check-and-mark ran concurrently; it must serialize with the queue")
	}
}

func TestQueueAcknowledgeFiresSuccess(t *testing.T) {
	rec := newRecorder()
	q, _ := newTestQueue(t, Config{Events: rec})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)
	got, _ := q.Dequeue()
	q.Acknowledge(got)

	if len(rec.succeeded) != 1 || rec.succeeded[0] != job.ID {
		t.Errorf("succeeded = %v, want [%s]", rec.succeeded, job.ID)
	}
}

func TestQueueJitterHook(t *testing.T) {
	rec := newRecorder()
	q, fake := newTestQueue(t, Config{
		MaxAttempts: 3,
		BaseBackoff: time.Second,
		Jitter: func(d time.Duration) time.Duration {
			return d + 500*time.Millisecond
		},
		Events: rec,
	})
	ctx := context.Background()

	job := NewJob([]byte("x"))
	q.Enqueue(ctx, job)
	got, _ := q.Dequeue()
	q.RecordFailure(got, errors.New("fail"))

	want := fake.Now().Add(2*time.Second + 500*time.Millisecond)
	if !rec.eligible[job.ID].Equal(want) {
		t.Errorf("jittered eligibility = %v, want %v", rec.eligible[job.ID], want)
	}
}

func TestQueueConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"negative max attempts", Config{MaxAttempts: -1}},
		{"negative base backoff", Config{BaseBackoff: -time.Second}},
		{"max backoff below base", Config{BaseBackoff: time.Minute, MaxBackoff: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
