package adminusers

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	confirmEditPrompt   = "Confirm changes to this user?"
	confirmDeletePrompt = "Are you sure you want to delete this user?"
)

type createState struct {
	busy bool
}

type modalKind int

const (
	modalClosed modalKind = iota
	modalEditing
	modalConfirmEdit
	modalConfirmDelete
)

// modalState tracks the single modal slot. busy is set while a confirmed call is in flight.
type modalState struct {
	kind   modalKind
	userID int64
	form   EditForm
	dialog ConfirmDialog
	busy   bool
	// seq invalidates pending OpenEdit loads.
	seq uint64
}

// SubmitCreate validates in and, if it passes, creates the user and shows page 1.
func (s *Screen) SubmitCreate(in UserInput) {
	s.dispatch(func() { s.submitCreate(in.Trimmed()) })
}

func (s *Screen) submitCreate(in UserInput) {
	if s.create.busy {
		s.note("create.ignored")
		return
	}
	if v := s.validate.Validate(in); !v.Valid {
		s.render.CreateFormErrors(v.FieldErrors, JoinFieldErrors(v.FieldErrors))
		s.note("create.invalid")
		return
	}

	s.create.busy = true
	s.render.CreateFormErrors(nil, "")
	s.render.CreateFormBusy(true)

	s.spawn(func(ctx context.Context) func() {
		created, err := s.api.Create(ctx, in)
		return func() {
			defer func() {
				s.create.busy = false
				s.render.CreateFormBusy(false)
			}()
			if err != nil {
				s.log.Warn("admin users: create failed", slog.Any("err", err))
				s.render.CreateFormErrors(nil, err.Error())
				s.note("create.failed")
				return
			}
			s.render.ResetCreateForm()
			if _, err := s.store.SetQuery(PageTo(1)); err == nil {
				s.fetch()
			}
			s.render.Notify(Notice{Kind: NoticeSuccess, Text: "User created: " + created.Name})
			s.note("create.done", slog.Int64("id", created.ID))
		}
	})
}

// OpenEdit loads the user and opens the edit form pre-populated with it.
func (s *Screen) OpenEdit(id int64) {
	s.dispatch(func() { s.openEdit(id) })
}

func (s *Screen) openEdit(id int64) {
	if s.modal.busy {
		s.note("edit.ignored")
		return
	}
	s.modal.seq++
	seq := s.modal.seq

	s.spawn(func(ctx context.Context) func() {
		user, err := s.api.Get(ctx, id)
		return func() {
			if seq != s.modal.seq || s.modal.busy {
				s.note("edit.stale")
				return
			}
			if err != nil {
				s.log.Warn("admin users: load for edit failed", slog.Int64("id", id), slog.Any("err", err))
				s.render.Notify(Notice{Kind: NoticeError, Text: fmt.Sprintf("Could not load user #%d: %v", id, err)})
				s.note("edit.failed")
				return
			}
			s.modal = modalState{
				kind:   modalEditing,
				userID: user.ID,
				form:   EditForm{UserID: user.ID, Values: user.Input()},
				seq:    s.modal.seq,
			}
			s.render.EditForm(s.modal.form)
			s.note("edit.opened")
		}
	})
}

// SubmitEdit validates the edited values and asks for confirmation before updating.
func (s *Screen) SubmitEdit(in UserInput) {
	s.dispatch(func() { s.submitEdit(in.Trimmed()) })
}

func (s *Screen) submitEdit(in UserInput) {
	if s.modal.kind != modalEditing {
		s.note("edit.submit.ignored")
		return
	}
	s.modal.form.Values = in
	if v := s.validate.Validate(in); !v.Valid {
		s.modal.form.Errors = v.FieldErrors
		s.modal.form.Error = JoinFieldErrors(v.FieldErrors)
		s.render.EditForm(s.modal.form)
		s.note("edit.invalid")
		return
	}
	s.modal.form.Errors = nil
	s.modal.form.Error = ""
	s.modal.kind = modalConfirmEdit
	s.modal.dialog = ConfirmDialog{Prompt: confirmEditPrompt}
	s.render.Confirm(s.modal.dialog)
}

// RequestDelete asks for confirmation before removing the user.
func (s *Screen) RequestDelete(id int64) {
	s.dispatch(func() {
		if s.modal.busy {
			s.note("delete.ignored")
			return
		}
		s.modal = modalState{
			kind:   modalConfirmDelete,
			userID: id,
			dialog: ConfirmDialog{Prompt: confirmDeletePrompt},
			seq:    s.modal.seq + 1,
		}
		s.render.Confirm(s.modal.dialog)
	})
}

// Confirm accepts the open confirmation dialog.
func (s *Screen) Confirm() {
	s.dispatch(func() {
		if s.modal.busy {
			return
		}
		switch s.modal.kind {
		case modalConfirmEdit:
			s.confirmEdit()
		case modalConfirmDelete:
			s.confirmDelete()
		default:
			s.note("confirm.ignored")
		}
	})
}

func (s *Screen) confirmEdit() {
	id, in := s.modal.userID, s.modal.form.Values
	s.markBusy()

	s.spawn(func(ctx context.Context) func() {
		_, err := s.api.Update(ctx, id, in)
		return func() {
			s.modal.busy = false
			if err != nil {
				s.log.Warn("admin users: update failed", slog.Int64("id", id), slog.Any("err", err))
				s.modal.kind = modalEditing
				s.modal.form.Error = err.Error()
				s.render.EditForm(s.modal.form)
				s.note("edit.failed")
				return
			}
			s.closeModal()
			s.fetch()
			s.render.Notify(Notice{Kind: NoticeSuccess, Text: "User updated"})
			s.note("edit.done", slog.Int64("id", id))
		}
	})
}

func (s *Screen) confirmDelete() {
	id := s.modal.userID
	s.markBusy()

	s.spawn(func(ctx context.Context) func() {
		err := s.api.Remove(ctx, id)
		return func() {
			s.modal.busy = false
			if err != nil {
				s.log.Warn("admin users: delete failed", slog.Int64("id", id), slog.Any("err", err))
				s.modal.dialog.Busy = false
				s.modal.dialog.Error = err.Error()
				s.render.Confirm(s.modal.dialog)
				s.note("delete.failed")
				return
			}
			s.closeModal()
			s.clampAfterRemove()
			s.fetch()
			s.render.Notify(Notice{Kind: NoticeSuccess, Text: "User deleted"})
			s.note("delete.done", slog.Int64("id", id))
		}
	})
}

// clampAfterRemove moves off a page that the removal is about to empty.
func (s *Screen) clampAfterRemove() {
	q := s.store.Query()
	last := PageCount(s.store.Result().Total-1, q.Limit)
	if q.Page > last {
		if _, err := s.store.SetQuery(PageTo(last)); err == nil {
			s.note("delete.clamped", slog.Int("from", q.Page), slog.Int("to", last))
		}
	}
}

// Cancel closes the modal unless a confirmed call is still in flight.
func (s *Screen) Cancel() {
	s.dispatch(func() {
		if s.modal.busy {
			s.note("cancel.ignored")
			return
		}
		if s.modal.kind == modalClosed {
			// drops an OpenEdit that has not answered yet
			s.modal.seq++
			return
		}
		s.closeModal()
	})
}

func (s *Screen) markBusy() {
	s.modal.busy = true
	s.modal.dialog.Busy = true
	s.modal.dialog.Error = ""
	s.render.Confirm(s.modal.dialog)
}

func (s *Screen) closeModal() {
	s.modal = modalState{seq: s.modal.seq + 1}
	s.render.CloseModal()
}
