package adminusers

import (
	"context"
	"sync"
)

// DataAccess is the backend the screen reads from and writes to.
type DataAccess interface {
	List(ctx context.Context, q ListQuery) (ListResult, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, in UserInput) (User, error)
	Update(ctx context.Context, id int64, in UserInput) (User, error)
	Remove(ctx context.Context, id int64) error
}

// Validator checks a candidate input before any network call.
type Validator interface {
	Validate(in UserInput) Validation
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(in UserInput) Validation

func (f ValidatorFunc) Validate(in UserInput) Validation {
	return f(in)
}

// Renderer receives plain data from the screen. Implementations must not call back into
// the Screen synchronously from these methods; user interaction is reported through the
// Screen's event methods instead.
type Renderer interface {
	Loading()
	List(result ListResult, pager Pager)
	ListError(message string)

	DetailLoading(id int64)
	Detail(user User)
	DetailError(id int64, message string)
	HideDetail()

	CreateFormBusy(busy bool)
	CreateFormErrors(fields FieldErrors, message string)
	ResetCreateForm()

	EditForm(form EditForm)
	Confirm(dialog ConfirmDialog)
	CloseModal()

	Notify(notice Notice)
}

// Location is the addressable fragment of the environment (the URL hash in a browser).
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// MemoryLocation is a Location kept in memory, used by non-browser front ends and tests.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

func (l *MemoryLocation) SetFragment(fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = fragment
}
