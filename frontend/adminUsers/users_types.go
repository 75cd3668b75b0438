package adminusers

import "strings"

// Role is one of the closed set of directory roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// Roles returns the selectable roles in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleUser}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	default:
		return false
	}
}

// User is a directory record as returned by the backend.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Input returns the editable part of the record.
func (u User) Input() UserInput {
	return UserInput{Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserInput is the user-supplied part of a record used for create and update calls.
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (in UserInput) Trimmed() UserInput {
	return UserInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Role:  Role(strings.TrimSpace(string(in.Role))),
	}
}

// ListQuery identifies one requested page. Two queries are the same request iff they are ==.
type ListQuery struct {
	Page  int
	Limit int
	Q     string
}

// ListResult is one page of users plus the total across all pages.
type ListResult struct {
	Items []User
	Total int
}

// Pager is the pagination control state derived from the live query and total.
type Pager struct {
	Page      int
	PageCount int
	Total     int
	HasPrev   bool
	HasNext   bool
}

// FieldErrors maps an input field name (name, email, role) to its message.
type FieldErrors map[string]string

// Validation is the outcome of validating a UserInput.
type Validation struct {
	Valid       bool
	FieldErrors FieldErrors
}

// NoticeKind distinguishes success and error notifications.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient notification (toast).
type Notice struct {
	Kind NoticeKind
	Text string
}

// EditForm is the state of the edit modal.
type EditForm struct {
	UserID int64
	Values UserInput
	Errors FieldErrors
	Error  string
}

// ConfirmDialog is an explicit confirmation step shown in the modal.
type ConfirmDialog struct {
	Prompt string
	Error  string
	Busy   bool
}
