package adminusers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultPageSize    = 5
	DefaultSearchDelay = 300 * time.Millisecond

	eventBuffer = 64
)

var ErrScreenRunning = errors.New("screen is already running")

// Screen is the admin screen engine. All state lives on one loop goroutine started by Run;
// the exported event methods are safe to call from any goroutine and only enqueue work.
type Screen struct {
	api      DataAccess
	render   Renderer
	validate Validator
	location Location
	log      *slog.Logger

	pageSize    int
	searchDelay time.Duration

	store  *Store
	search *Debouncer
	detail detailRouter
	create createState
	modal  modalState

	searchSeq uint64
	pendingQ  string

	events  chan func()
	done    chan struct{}
	running bool
	runMu   sync.Mutex

	ctx      context.Context
	inflight sync.WaitGroup

	// observe is called on the loop after each settled step; used for tracing.
	observe func(step string)
}

// Option configures a Screen.
type Option func(*Screen)

func WithValidator(v Validator) Option {
	return func(s *Screen) { s.validate = v }
}

func WithLocation(l Location) Option {
	return func(s *Screen) { s.location = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Screen) { s.log = l }
}

func WithPageSize(limit int) Option {
	return func(s *Screen) { s.pageSize = limit }
}

func WithSearchDelay(d time.Duration) Option {
	return func(s *Screen) { s.searchDelay = d }
}

// NewScreen builds an independent screen. Several screens can run side by side.
func NewScreen(api DataAccess, render Renderer, opts ...Option) *Screen {
	s := &Screen{
		api:         api,
		render:      render,
		validate:    DefaultValidator,
		log:         slog.Default(),
		pageSize:    DefaultPageSize,
		searchDelay: DefaultSearchDelay,
		events:      make(chan func(), eventBuffer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.location == nil {
		s.location = NewMemoryLocation("")
	}
	if s.searchDelay <= 0 {
		s.searchDelay = DefaultSearchDelay
	}
	s.store = NewStore(s.pageSize)
	s.search = NewDebouncer(s.searchDelay)
	return s
}

// Run performs the initial load, follows the current fragment and processes events until
// ctx is done. It waits for in-flight calls to return before exiting.
func (s *Screen) Run(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return ErrScreenRunning
	}
	s.running = true
	s.runMu.Unlock()

	s.ctx = ctx
	defer func() {
		s.search.Cancel()
		close(s.done)
		s.inflight.Wait()
	}()

	s.fetch()
	s.navigate(s.location.Fragment())

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.events:
			fn()
		}
	}
}

// dispatch queues fn for the loop. It never blocks once the screen has stopped.
func (s *Screen) dispatch(fn func()) {
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// spawn runs work off the loop and applies its result back on the loop.
func (s *Screen) spawn(work func(ctx context.Context) func()) {
	s.inflight.Add(1)
	ctx := s.ctx
	go func() {
		defer s.inflight.Done()
		apply := work(ctx)
		if ctx.Err() != nil {
			return
		}
		s.dispatch(apply)
	}()
}

func (s *Screen) note(step string, attrs ...any) {
	s.log.Debug("admin users: "+step, attrs...)
	if s.observe != nil {
		s.observe(step)
	}
}

// State returns a copy of the list state, read on the loop.
func (s *Screen) State(ctx context.Context) (ViewState, error) {
	out := make(chan ViewState, 1)
	s.dispatch(func() { out <- s.store.State() })
	select {
	case st := <-out:
		return st, nil
	case <-s.done:
		return ViewState{}, context.Canceled
	case <-ctx.Done():
		return ViewState{}, ctx.Err()
	}
}
