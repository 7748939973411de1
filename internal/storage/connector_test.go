package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/core"
)

type stubDatabase struct {
	name   string
	closed atomic.Bool
}

func (d *stubDatabase) Name() string                 { return d.name }
func (d *stubDatabase) Collection(string) Collection { return nil }
func (d *stubDatabase) Ping(context.Context) error   { return nil }
func (d *stubDatabase) Close(context.Context) error  { d.closed.Store(true); return nil }

type countingDialer struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (c *countingDialer) dial(ctx context.Context, _ string, name string) (Database, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	return &stubDatabase{name: name}, nil
}

func TestNewConnector_RequiresConfiguration(t *testing.T) {
	d := &countingDialer{}
	tests := []struct {
		name string
		uri  string
		db   string
	}{
		{"missing uri", "", "fintrack"},
		{"missing name", "memory://", ""},
		{"missing both", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConnector(tt.uri, tt.db, d.dial)
			if !errors.Is(err, ErrNotConfigured) {
				t.Fatalf("expected ErrNotConfigured, got %v", err)
			}
		})
	}
	if d.calls.Load() != 0 {
		t.Fatalf("dial must not run for invalid configuration")
	}
}

func TestConnector_ConcurrentAcquireDialsOnce(t *testing.T) {
	d := &countingDialer{release: make(chan struct{})}
	conn, err := NewConnector("memory://", "fintrack", d.dial)
	if err != nil {
		t.Fatal(err)
	}

	const callers = 16
	var wg sync.WaitGroup
	handles := make([]Database, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = conn.Acquire(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(d.release)
	wg.Wait()

	if got := d.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one dial, got %d", got)
	}
	for i := range handles {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Fatalf("caller %d got a different handle", i)
		}
	}

	// Later callers reuse the memoized handle.
	db, err := conn.Acquire(context.Background())
	if err != nil || db != handles[0] {
		t.Fatalf("expected memoized handle, got %v, %v", db, err)
	}
	if d.calls.Load() != 1 {
		t.Fatalf("memoized acquire must not dial again")
	}
}

func TestConnector_FailureIsMemoized(t *testing.T) {
	boom := errors.New("connection refused")
	d := &countingDialer{err: boom}
	conn, _ := NewConnector("mongodb://localhost:1", "fintrack", d.dial)

	for i := 0; i < 3; i++ {
		_, err := conn.Acquire(context.Background())
		if !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected wrapped dial error, got %v", i, err)
		}
	}
	if got := d.calls.Load(); got != 1 {
		t.Fatalf("expected one dial attempt for the process, got %d", got)
	}
}

func TestConnector_CallerCancellationDoesNotAbortAttempt(t *testing.T) {
	d := &countingDialer{release: make(chan struct{})}
	conn, _ := NewConnector("memory://", "fintrack", d.dial)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := conn.Acquire(ctx)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(d.release)
	db, err := conn.Acquire(context.Background())
	if err != nil {
		t.Fatalf("shared attempt should still succeed: %v", err)
	}
	if db.Name() != "fintrack" {
		t.Fatalf("unexpected database name %q", db.Name())
	}
	if got := d.calls.Load(); got != 1 {
		t.Fatalf("expected a single dial, got %d", got)
	}
}

func TestConnector_Close(t *testing.T) {
	d := &countingDialer{}
	conn, _ := NewConnector("memory://", "fintrack", d.dial)

	db, err := conn.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !db.(*stubDatabase).closed.Load() {
		t.Fatal("expected underlying database to be closed")
	}
	if _, err := conn.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestConnector_CloseDuringDial(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	stub := &stubDatabase{name: "fintrack"}
	conn, err := NewConnector("memory://", "fintrack", func(context.Context, string, string) (Database, error) {
		close(entered)
		<-release
		return stub, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan error, 1)
	go func() {
		_, err := conn.Acquire(context.Background())
		acquired <- err
	}()

	<-entered
	if err := conn.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(release)

	if err := <-acquired; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !stub.closed.Load() {
		t.Fatal("connection established after Close was left open")
	}
}

func TestConnector_CloseBeforeAcquire(t *testing.T) {
	d := &countingDialer{}
	conn, _ := NewConnector("memory://", "fintrack", d.dial)
	if err := conn.Close(context.Background()); err != nil {
		t.Fatalf("close without connection: %v", err)
	}
	if _, err := conn.Acquire(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if d.calls.Load() != 0 {
		t.Fatal("closed connector must not dial")
	}
}

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017":   "mongodb",
		"MongoDB+SRV://cluster":       "mongodb+srv",
		"sqlite://./data/fintrack.db": "sqlite",
		"./relative/path.db":          "",
		"://nothing":                  "",
	}
	for uri, want := range tests {
		if got := Scheme(uri); got != want {
			t.Errorf("Scheme(%q) = %q, want %q", uri, got, want)
		}
	}
}

func TestPathFromURI(t *testing.T) {
	if got := PathFromURI("sqlite://./data/fintrack.db"); got != "./data/fintrack.db" {
		t.Errorf("relative path: got %q", got)
	}
	if got := PathFromURI("bolt:///var/lib/fintrack.db"); got != "/var/lib/fintrack.db" {
		t.Errorf("absolute path: got %q", got)
	}
	if got := PathFromURI("plain.db"); got != "plain.db" {
		t.Errorf("no scheme: got %q", got)
	}
}

func TestSortNewestFirst_StableOnTies(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// Reverse insertion order: c was inserted last.
	txs := []core.Transaction{
		{ID: "c", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "a", CreatedAt: base},
	}
	SortNewestFirst(txs)

	want := []string{"b", "c", "a"}
	for i, id := range want {
		if txs[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, txs[i].ID, id)
		}
	}
}
