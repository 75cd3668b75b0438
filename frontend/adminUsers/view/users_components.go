package view

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	adminusers "userdesk/frontend/adminUsers"
)

// Render writes c to a string. Components here never fail on a bytes.Buffer, but the
// error is still reported.
func Render(c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func Spinner(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="spinner" role="status"><span class="spinner-dot"></span>%s</div>`, esc(text))
		return err
	})
}

// UsersTable renders one page of users with edit/delete actions and detail links.
func UsersTable(users []adminusers.User) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(users) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No users found.</p>`)
			return err
		}
		var b strings.Builder
		b.WriteString(`<table class="table"><thead><tr><th>Name</th><th>Email</th><th>Role</th><th>Actions</th></tr></thead><tbody>`)
		for _, u := range users {
			name := esc(u.Name)
			fmt.Fprintf(&b, `<tr data-user-id="%d">`, u.ID)
			fmt.Fprintf(&b, `<td><a href="%s" class="link">%s</a></td>`, esc(string(templ.URL(adminusers.DetailFragment(u.ID)))), name)
			fmt.Fprintf(&b, `<td>%s</td><td><span class="role role-%s">%s</span></td>`, esc(u.Email), esc(string(u.Role)), esc(string(u.Role)))
			fmt.Fprintf(&b, `<td class="actions"><button class="btn" type="button" data-action="edit" data-id="%d" aria-label="Edit %s">Edit</button>`, u.ID, name)
			fmt.Fprintf(&b, `<button class="btn danger" type="button" data-action="delete" data-id="%d" aria-label="Delete %s">Delete</button></td></tr>`, u.ID, name)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Pagination renders previous/next controls; disabled states follow the pager.
func Pagination(p adminusers.Pager) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<button class="btn" type="button" data-action="prev" aria-label="Previous page"%s>‹</button>`+
				`<span class="page-info">Page %d of %d</span>`+
				`<button class="btn" type="button" data-action="next" aria-label="Next page"%s>›</button>`+
				`<span class="total">%d users</span>`,
			disabledAttr(!p.HasPrev), p.Page, p.PageCount, disabledAttr(!p.HasNext), p.Total)
		return err
	})
}

func ListError(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="error" role="alert">Could not load users. <button class="btn" type="button" data-action="retry">Try again</button><pre>%s</pre></div>`,
			esc(message))
		return err
	})
}

// DetailCard renders the detail panel. badgeURL may be empty.
func DetailCard(u adminusers.User, badgeURL string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="card detail" data-user-id="%d"><h3>Details</h3><dl>`, u.ID)
		fmt.Fprintf(&b, `<dt>Name</dt><dd>%s</dd><dt>Email</dt><dd>%s</dd>`, esc(u.Name), esc(u.Email))
		fmt.Fprintf(&b, `<dt>Role</dt><dd>%s</dd><dt>Created</dt><dd><time datetime="%s">%s</time></dd></dl>`,
			esc(string(u.Role)), esc(u.CreatedAt), esc(FormatCreatedAt(u.CreatedAt)))
		b.WriteString(`<div class="actions">`)
		if badgeURL != "" {
			fmt.Fprintf(&b, `<a class="btn" href="%s" target="_blank" rel="noopener">Badge (PDF)</a>`, esc(string(templ.URL(badgeURL))))
		}
		b.WriteString(`<button class="btn" type="button" data-action="close-detail">Close</button></div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func DetailError(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="card detail"><p class="error">%s</p><div class="actions"><button class="btn" type="button" data-action="close-detail">Close</button></div></div>`,
			esc(message))
		return err
	})
}

// EditFormView renders the edit modal body with per-field and form-level errors.
func EditFormView(form adminusers.EditForm) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<form id="edit-form" data-user-id="%d" novalidate><h2 id="modal-title">Edit user</h2>`, form.UserID)
		fmt.Fprintf(&b, `<label>Name <input name="name" value="%s" required minlength="3"></label>%s`,
			esc(form.Values.Name), fieldError(form.Errors, "name"))
		fmt.Fprintf(&b, `<label>Email <input name="email" type="email" value="%s" required></label>%s`,
			esc(form.Values.Email), fieldError(form.Errors, "email"))
		fmt.Fprintf(&b, `<label>Role %s</label>%s`, roleSelect(form.Values.Role, false), fieldError(form.Errors, "role"))
		fmt.Fprintf(&b, `<p class="form-error" aria-live="polite">%s</p>`, esc(form.Error))
		b.WriteString(`<div class="actions"><button class="btn primary" type="submit">Save</button>`)
		b.WriteString(`<button class="btn" type="button" data-action="cancel">Cancel</button></div></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func ConfirmView(d adminusers.ConfirmDialog) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="confirm"><h2 id="modal-title">Confirmation</h2><p>%s</p>`, esc(d.Prompt))
		if d.Error != "" {
			fmt.Fprintf(&b, `<p class="form-error" role="alert">%s</p>`, esc(d.Error))
		}
		label := "Confirm"
		if d.Busy {
			label = "Working…"
		}
		fmt.Fprintf(&b, `<div class="actions"><button class="btn primary" type="button" data-action="confirm"%s>%s</button>`, disabledAttr(d.Busy), label)
		fmt.Fprintf(&b, `<button class="btn" type="button" data-action="cancel"%s>Cancel</button></div></div>`, disabledAttr(d.Busy))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func Toast(n adminusers.Notice) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="toast show toast-%s" role="status">%s</div>`, esc(string(n.Kind)), esc(n.Text))
		return err
	})
}

// CreateFormFields renders the inputs of the create form; the shell wraps them in the form.
func CreateFormFields() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="grid"><label>Name <input name="name" required minlength="3"></label>`+
				`<label>Email <input name="email" type="email" required></label>`+
				`<label>Role %s</label></div>`,
			roleSelect("", true))
		return err
	})
}

// FormErrors renders the create form's error line.
func FormErrors(fields adminusers.FieldErrors, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if message == "" {
			message = adminusers.JoinFieldErrors(fields)
		}
		_, err := io.WriteString(w, esc(message))
		return err
	})
}

func roleSelect(selected adminusers.Role, placeholder bool) string {
	var b strings.Builder
	b.WriteString(`<select name="role" required>`)
	if placeholder {
		b.WriteString(`<option value="">Select</option>`)
	}
	for _, r := range adminusers.Roles() {
		sel := ""
		if r == selected {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, esc(string(r)), sel, esc(roleLabel(r)))
	}
	b.WriteString(`</select>`)
	return b.String()
}

func roleLabel(r adminusers.Role) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fieldError(fields adminusers.FieldErrors, key string) string {
	if msg := fields[key]; msg != "" {
		return fmt.Sprintf(`<span class="field-error" data-field="%s">%s</span>`, key, esc(msg))
	}
	return ""
}

func disabledAttr(disabled bool) string {
	if disabled {
		return " disabled"
	}
	return ""
}
