package view

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/a-h/templ"

	adminusers "userdesk/frontend/adminUsers"
)

// Region names an element of the page shell that the renderer replaces wholesale.
type Region string

const (
	RegionList        Region = "list-area"
	RegionPagination  Region = "pagination"
	RegionDetail      Region = "detail"
	RegionModal       Region = "modal-content"
	RegionModalLayer  Region = "modal"
	RegionToast       Region = "toast"
	RegionCreateError Region = "create-error"
)

// FormCreate is the id of the create form in the shell.
const FormCreate = "create-form"

// DefaultToastDuration is how long a notice stays on screen.
const DefaultToastDuration = 2500 * time.Millisecond

// Surface is the document the renderer writes to. The browser build backs it with the
// DOM; tests use an in-memory copy.
type Surface interface {
	Replace(region Region, html string)
	Show(region Region)
	Hide(region Region)
	SetFormDisabled(form string, disabled bool)
	ResetForm(form string)
}

// HTMLRenderer turns screen updates into HTML fragments written to a Surface.
type HTMLRenderer struct {
	surface   Surface
	badgeBase string
	toastFor  time.Duration
	log       *slog.Logger

	mu       sync.Mutex
	toastSeq uint64
	toast    *time.Timer
}

type RendererOption func(*HTMLRenderer)

// WithBadgeBase sets the API prefix used for badge links ("/api" gives /api/users/7/badge.pdf).
func WithBadgeBase(base string) RendererOption {
	return func(r *HTMLRenderer) { r.badgeBase = base }
}

func WithToastDuration(d time.Duration) RendererOption {
	return func(r *HTMLRenderer) { r.toastFor = d }
}

func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *HTMLRenderer) { r.log = l }
}

func NewHTMLRenderer(surface Surface, opts ...RendererOption) *HTMLRenderer {
	r := &HTMLRenderer{
		surface:  surface,
		toastFor: DefaultToastDuration,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ adminusers.Renderer = (*HTMLRenderer)(nil)

func (r *HTMLRenderer) put(region Region, c templ.Component) {
	html, err := Render(c)
	if err != nil {
		r.log.Error("render failed", slog.String("region", string(region)), slog.Any("err", err))
		return
	}
	r.surface.Replace(region, html)
}

func (r *HTMLRenderer) Loading() {
	r.put(RegionList, Spinner("Loading users…"))
}

func (r *HTMLRenderer) List(result adminusers.ListResult, pager adminusers.Pager) {
	r.put(RegionList, UsersTable(result.Items))
	r.put(RegionPagination, Pagination(pager))
}

func (r *HTMLRenderer) ListError(message string) {
	r.put(RegionList, ListError(message))
}

func (r *HTMLRenderer) DetailLoading(id int64) {
	r.put(RegionDetail, Spinner(fmt.Sprintf("Loading user #%d…", id)))
	r.surface.Show(RegionDetail)
}

func (r *HTMLRenderer) Detail(user adminusers.User) {
	r.put(RegionDetail, DetailCard(user, r.BadgeURL(user.ID)))
	r.surface.Show(RegionDetail)
}

func (r *HTMLRenderer) DetailError(_ int64, message string) {
	r.put(RegionDetail, DetailError(message))
	r.surface.Show(RegionDetail)
}

func (r *HTMLRenderer) HideDetail() {
	r.surface.Replace(RegionDetail, "")
	r.surface.Hide(RegionDetail)
}

func (r *HTMLRenderer) CreateFormBusy(busy bool) {
	r.surface.SetFormDisabled(FormCreate, busy)
}

func (r *HTMLRenderer) CreateFormErrors(fields adminusers.FieldErrors, message string) {
	r.put(RegionCreateError, FormErrors(fields, message))
}

func (r *HTMLRenderer) ResetCreateForm() {
	r.surface.ResetForm(FormCreate)
	r.surface.Replace(RegionCreateError, "")
}

func (r *HTMLRenderer) EditForm(form adminusers.EditForm) {
	r.put(RegionModal, EditFormView(form))
	r.surface.Show(RegionModalLayer)
}

func (r *HTMLRenderer) Confirm(dialog adminusers.ConfirmDialog) {
	r.put(RegionModal, ConfirmView(dialog))
	r.surface.Show(RegionModalLayer)
}

func (r *HTMLRenderer) CloseModal() {
	r.surface.Replace(RegionModal, "")
	r.surface.Hide(RegionModalLayer)
}

// Notify shows the notice and clears it after the toast duration unless a newer one
// replaced it first.
func (r *HTMLRenderer) Notify(notice adminusers.Notice) {
	r.put(RegionToast, Toast(notice))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.toastSeq++
	seq := r.toastSeq
	if r.toast != nil {
		r.toast.Stop()
	}
	r.toast = time.AfterFunc(r.toastFor, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if seq != r.toastSeq {
			return
		}
		r.surface.Replace(RegionToast, "")
	})
}

// Close stops a pending toast timer.
func (r *HTMLRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toastSeq++
	if r.toast != nil {
		r.toast.Stop()
		r.toast = nil
	}
}

// BadgeURL is the PDF badge link for id, or "" when no badge base is configured.
func (r *HTMLRenderer) BadgeURL(id int64) string {
	if r.badgeBase == "" {
		return ""
	}
	return fmt.Sprintf("%s/users/%d/badge.pdf", r.badgeBase, id)
}

// FormatCreatedAt renders a backend timestamp for display, or returns it unchanged if it
// does not parse.
func FormatCreatedAt(value string) string {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.UTC().Format("2006-01-02 15:04")
}
