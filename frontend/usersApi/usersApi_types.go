package usersapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// TimeLayout is the ISO-8601 form used for createdAt on the wire.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

var ErrInvalidParam = errors.New("invalid list parameter")

var sortColumns = map[string]string{
	"id":        "u.id",
	"name":      "u.name",
	"email":     "u.email",
	"role":      "u.role",
	"createdAt": "u.created_at",
}

// ListParams is a json-server style list request: _page, _limit, q, _sort, _order.
type ListParams struct {
	Page  int
	Limit int
	Q     string
	Sort  string
	Order string
}

// ParseListParams reads list parameters; page and limit also accept the bare names.
func ParseListParams(values url.Values) (ListParams, error) {
	p := ListParams{Page: 1, Limit: DefaultLimit, Sort: "id", Order: "desc"}

	var err error
	if p.Page, err = intParam(values, 1, "_page", "page"); err != nil {
		return p, err
	}
	if p.Limit, err = intParam(values, DefaultLimit, "_limit", "limit"); err != nil {
		return p, err
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Q = strings.TrimSpace(values.Get("q"))

	if s := strings.TrimSpace(values.Get("_sort")); s != "" {
		if _, ok := sortColumns[s]; !ok {
			return p, fmt.Errorf("%w: _sort %q", ErrInvalidParam, s)
		}
		p.Sort = s
		p.Order = "asc"
	}
	if o := strings.ToLower(strings.TrimSpace(values.Get("_order"))); o != "" {
		if o != "asc" && o != "desc" {
			return p, fmt.Errorf("%w: _order %q", ErrInvalidParam, o)
		}
		p.Order = o
	}
	return p, nil
}

func intParam(values url.Values, fallback int, names ...string) (int, error) {
	for _, name := range names {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: %s %q", ErrInvalidParam, name, raw)
		}
		return n, nil
	}
	return fallback, nil
}

func (p ListParams) orderExpr() string {
	return fmt.Sprintf("%s %s", sortColumns[p.Sort], strings.ToUpper(p.Order))
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// SearchKey folds text for case-insensitive substring search.
func SearchKey(parts ...string) string {
	return cases.Fold().String(strings.Join(parts, " "))
}

func toRecord(m models.User) adminusers.User {
	return adminusers.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      adminusers.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC().Format(TimeLayout),
	}
}

func applyInput(m *models.User, in adminusers.UserInput) {
	m.Name = in.Name
	m.Email = in.Email
	m.Role = string(in.Role)
	m.SearchKey = SearchKey(in.Name, in.Email, string(in.Role))
	m.UpdatedAt = time.Now().UTC()
}
