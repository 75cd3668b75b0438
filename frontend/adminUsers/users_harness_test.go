package adminusers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

const waitTimeout = 2 * time.Second

type reply struct {
	result ListResult
	user   User
	err    error
}

// apiCall is one blocked DataAccess call; the test decides when and how it returns.
type apiCall struct {
	op    string
	query ListQuery
	id    int64
	in    UserInput
	reply chan reply
}

func (c *apiCall) answer(r reply) {
	c.reply <- r
}

type fakeAPI struct {
	calls chan *apiCall
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(chan *apiCall, 16)}
}

func (f *fakeAPI) do(ctx context.Context, c *apiCall) (reply, error) {
	c.reply = make(chan reply, 1)
	select {
	case f.calls <- c:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case r := <-c.reply:
		return r, r.err
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (f *fakeAPI) List(ctx context.Context, q ListQuery) (ListResult, error) {
	r, err := f.do(ctx, &apiCall{op: "list", query: q})
	return r.result, err
}

func (f *fakeAPI) Get(ctx context.Context, id int64) (User, error) {
	r, err := f.do(ctx, &apiCall{op: "get", id: id})
	return r.user, err
}

func (f *fakeAPI) Create(ctx context.Context, in UserInput) (User, error) {
	r, err := f.do(ctx, &apiCall{op: "create", in: in})
	return r.user, err
}

func (f *fakeAPI) Update(ctx context.Context, id int64, in UserInput) (User, error) {
	r, err := f.do(ctx, &apiCall{op: "update", id: id, in: in})
	return r.user, err
}

func (f *fakeAPI) Remove(ctx context.Context, id int64) error {
	_, err := f.do(ctx, &apiCall{op: "remove", id: id})
	return err
}

type rendered struct {
	name string
	data any
}

// recorder is a Renderer that keeps every call in order.
type recorder struct {
	mu     sync.Mutex
	events []rendered
}

func (r *recorder) add(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, rendered{name: name, data: data})
}

func (r *recorder) Loading() { r.add("loading", nil) }
func (r *recorder) List(result ListResult, pager Pager) { r.add("list", listView{result, pager}) }
func (r *recorder) ListError(message string) { r.add("listError", message) }
func (r *recorder) DetailLoading(id int64) { r.add("detailLoading", id) }
func (r *recorder) Detail(user User) { r.add("detail", user) }
func (r *recorder) DetailError(id int64, message string) { r.add("detailError", message) }
func (r *recorder) HideDetail() { r.add("hideDetail", nil) }
func (r *recorder) CreateFormBusy(busy bool) { r.add("createBusy", busy) }
func (r *recorder) ResetCreateForm() { r.add("resetCreate", nil) }
func (r *recorder) EditForm(form EditForm) { r.add("editForm", form) }
func (r *recorder) Confirm(d ConfirmDialog) { r.add("confirm", d) }
func (r *recorder) CloseModal() { r.add("closeModal", nil) }
func (r *recorder) Notify(notice Notice) { r.add("notify", notice) }
func (r *recorder) CreateFormErrors(fields FieldErrors, message string) {
	r.add("createErrors", createErrors{fields, message})
}

type listView struct {
	Result ListResult
	Pager  Pager
}

type createErrors struct {
	Fields  FieldErrors
	Message string
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(t *testing.T, name string) any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].name == name {
			return r.events[i].data
		}
	}
	t.Fatalf("renderer never received %q", name)
	return nil
}

type harness struct {
	t      *testing.T
	screen *Screen
	api    *fakeAPI
	render *recorder
	loc    *MemoryLocation
	steps  chan string
}

func startScreen(t *testing.T, fragment string, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		t:      t,
		api:    newFakeAPI(),
		render: &recorder{},
		loc:    NewMemoryLocation(fragment),
		steps:  make(chan string, 1024),
	}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithLocation(h.loc),
		WithSearchDelay(30 * time.Millisecond),
	}
	h.screen = NewScreen(h.api, h.render, append(base, opts...)...)
	h.screen.observe = func(step string) { h.steps <- step }

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.screen.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil {
			t.Errorf("run: %v", err)
		}
	})
	return h
}

// expect waits for the next DataAccess call and checks its operation.
func (h *harness) expect(op string) *apiCall {
	h.t.Helper()
	select {
	case c := <-h.api.calls:
		if c.op != op {
			h.t.Fatalf("expected %s call, got %s (%+v)", op, c.op, c)
		}
		return c
	case <-time.After(waitTimeout):
		h.t.Fatalf("timed out waiting for %s call", op)
		return nil
	}
}

// expectN collects n calls in arrival order, which is not necessarily issue order.
func (h *harness) expectN(op string, n int) []*apiCall {
	h.t.Helper()
	out := make([]*apiCall, 0, n)
	for len(out) < n {
		out = append(out, h.expect(op))
	}
	return out
}

func (h *harness) expectNoCall(within time.Duration) {
	h.t.Helper()
	select {
	case c := <-h.api.calls:
		h.t.Fatalf("unexpected %s call (%+v)", c.op, c)
	case <-time.After(within):
	}
}

// await drains loop steps until step is seen.
func (h *harness) await(step string) {
	h.t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case got := <-h.steps:
			if got == step {
				return
			}
		case <-deadline:
			h.t.Fatalf("timed out waiting for step %q", step)
		}
	}
}

func (h *harness) state() ViewState {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	st, err := h.screen.State(ctx)
	if err != nil {
		h.t.Fatalf("state: %v", err)
	}
	return st
}

// loadPage answers the next list call with a page of ids counting down from the top of total.
func (h *harness) loadPage(total int) ListQuery {
	h.t.Helper()
	c := h.expect("list")
	c.answer(reply{result: pageOf(c.query, total)})
	h.await("list.applied")
	return c.query
}

func pageOf(q ListQuery, total int) ListResult {
	items := []User{}
	start := total - (q.Page-1)*q.Limit
	for i := 0; i < q.Limit && start-i > 0; i++ {
		id := int64(start - i)
		items = append(items, User{
			ID:    id,
			Name:  fmt.Sprintf("User %d", id),
			Email: fmt.Sprintf("user%d@example.com", id),
			Role:  RoleUser,
		})
	}
	return ListResult{Items: items, Total: total}
}

func findCall(t *testing.T, calls []*apiCall, match func(*apiCall) bool) *apiCall {
	t.Helper()
	for _, c := range calls {
		if match(c) {
			return c
		}
	}
	t.Fatalf("no matching call among %d", len(calls))
	return nil
}
