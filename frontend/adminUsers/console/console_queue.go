package console

import (
	"context"

	adminusers "userdesk/frontend/adminUsers"
)

// Queue hands events to the screen from a single goroutine, in order, so that Update never
// waits on the screen loop while the loop is waiting to deliver a render message.
type Queue struct {
	next  Events
	calls chan func()
}

func NewQueue(next Events, size int) *Queue {
	return &Queue{next: next, calls: make(chan func(), size)}
}

// Run forwards queued events until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case call := <-q.calls:
			call()
		}
	}
}

func (q *Queue) push(call func()) {
	q.calls <- call
}

var _ Events = (*Queue)(nil)

func (q *Queue) Search(text string) { q.push(func() { q.next.Search(text) }) }
func (q *Queue) NextPage() { q.push(q.next.NextPage) }
func (q *Queue) PrevPage() { q.push(q.next.PrevPage) }
func (q *Queue) Retry() { q.push(q.next.Retry) }
func (q *Queue) OpenEdit(id int64) { q.push(func() { q.next.OpenEdit(id) }) }
func (q *Queue) RequestDelete(id int64) { q.push(func() { q.next.RequestDelete(id) }) }
func (q *Queue) Confirm() { q.push(q.next.Confirm) }
func (q *Queue) Cancel() { q.push(q.next.Cancel) }
func (q *Queue) ShowDetail(id int64) { q.push(func() { q.next.ShowDetail(id) }) }
func (q *Queue) CloseDetail() { q.push(q.next.CloseDetail) }

func (q *Queue) SubmitCreate(in adminusers.UserInput) {
	q.push(func() { q.next.SubmitCreate(in) })
}

func (q *Queue) SubmitEdit(in adminusers.UserInput) {
	q.push(func() { q.next.SubmitEdit(in) })
}
