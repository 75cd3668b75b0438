package console

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	adminusers "userdesk/frontend/adminUsers"
)

type loadingMsg struct{}

type listMsg struct {
	result adminusers.ListResult
	pager  adminusers.Pager
}

type listErrorMsg struct{ message string }

type detailLoadingMsg struct{ id int64 }

type detailMsg struct{ user adminusers.User }

type detailErrorMsg struct {
	id      int64
	message string
}

type hideDetailMsg struct{}

type createBusyMsg struct{ busy bool }

type createErrorsMsg struct {
	fields  adminusers.FieldErrors
	message string
}

type resetCreateMsg struct{}

type editFormMsg struct{ form adminusers.EditForm }

type confirmMsg struct{ dialog adminusers.ConfirmDialog }

type closeModalMsg struct{}

type noticeMsg struct{ notice adminusers.Notice }

type clearNoticeMsg struct{ seq int }

// Renderer forwards screen updates to a running tea.Program as messages.
type Renderer struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Attach routes messages to p. Updates sent before Attach are dropped.
func (r *Renderer) Attach(p *tea.Program) {
	r.AttachFunc(p.Send)
}

func (r *Renderer) AttachFunc(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *Renderer) emit(msg tea.Msg) {
	r.mu.RLock()
	send := r.send
	r.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

var _ adminusers.Renderer = (*Renderer)(nil)

func (r *Renderer) Loading() { r.emit(loadingMsg{}) }

func (r *Renderer) List(result adminusers.ListResult, pager adminusers.Pager) {
	r.emit(listMsg{result: result, pager: pager})
}

func (r *Renderer) ListError(message string) { r.emit(listErrorMsg{message}) }
func (r *Renderer) DetailLoading(id int64) { r.emit(detailLoadingMsg{id}) }
func (r *Renderer) Detail(user adminusers.User) { r.emit(detailMsg{user}) }

func (r *Renderer) DetailError(id int64, message string) {
	r.emit(detailErrorMsg{id: id, message: message})
}

func (r *Renderer) HideDetail() { r.emit(hideDetailMsg{}) }
func (r *Renderer) CreateFormBusy(busy bool) { r.emit(createBusyMsg{busy}) }

func (r *Renderer) CreateFormErrors(fields adminusers.FieldErrors, message string) {
	r.emit(createErrorsMsg{fields: fields, message: message})
}

func (r *Renderer) ResetCreateForm() { r.emit(resetCreateMsg{}) }
func (r *Renderer) EditForm(form adminusers.EditForm) { r.emit(editFormMsg{form}) }
func (r *Renderer) Confirm(dialog adminusers.ConfirmDialog) { r.emit(confirmMsg{dialog}) }
func (r *Renderer) CloseModal() { r.emit(closeModalMsg{}) }
func (r *Renderer) Notify(notice adminusers.Notice) { r.emit(noticeMsg{notice}) }
