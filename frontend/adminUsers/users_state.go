package adminusers

import "fmt"

// QueryChange is one field update merged by Store.SetQuery.
type QueryChange func(q *ListQuery)

func PageTo(page int) QueryChange {
	return func(q *ListQuery) { q.Page = page }
}

func SearchFor(text string) QueryChange {
	return func(q *ListQuery) { q.Q = text }
}

func LimitTo(limit int) QueryChange {
	return func(q *ListQuery) { q.Limit = limit }
}

// Ticket identifies one issued list fetch.
type Ticket struct {
	Query ListQuery
	Seq   uint64
}

// ViewState is everything the list shows.
type ViewState struct {
	Query  ListQuery
	Result ListResult
	Token  uint64
}

// Store is the single owner of list state. It performs no I/O and is confined to the
// screen's loop goroutine.
type Store struct {
	state ViewState
}

func NewStore(limit int) *Store {
	if limit < 1 {
		limit = DefaultPageSize
	}
	return &Store{state: ViewState{Query: ListQuery{Page: 1, Limit: limit}}}
}

func (s *Store) Query() ListQuery {
	return s.state.Query
}

func (s *Store) Result() ListResult {
	return s.state.Result
}

func (s *Store) State() ViewState {
	return s.state
}

// SetQuery merges changes into the live query. Invalid results leave the state untouched.
func (s *Store) SetQuery(changes ...QueryChange) (ListQuery, error) {
	next := s.state.Query
	for _, change := range changes {
		change(&next)
	}
	if next.Page < 1 {
		return s.state.Query, fmt.Errorf("%w: page %d", ErrInvalidQuery, next.Page)
	}
	if next.Limit < 1 {
		return s.state.Query, fmt.Errorf("%w: limit %d", ErrInvalidQuery, next.Limit)
	}
	s.state.Query = next
	return next, nil
}

// Begin issues a new in-flight token for the live query. Any earlier ticket stops being current.
func (s *Store) Begin() Ticket {
	s.state.Token++
	return Ticket{Query: s.state.Query, Seq: s.state.Token}
}

// Current reports whether t is the most recently issued ticket and its query is still live.
func (s *Store) Current(t Ticket) bool {
	return t.Seq == s.state.Token && t.Query == s.state.Query
}

// ApplyResult commits r only if q is still the live query.
func (s *Store) ApplyResult(q ListQuery, r ListResult) bool {
	if q != s.state.Query {
		return false
	}
	if r.Total < 0 {
		r.Total = 0
	}
	s.state.Result = r
	return true
}

func (s *Store) PageCount() int {
	return PageCount(s.state.Result.Total, s.state.Query.Limit)
}

func (s *Store) Pager() Pager {
	count := s.PageCount()
	page := s.state.Query.Page
	return Pager{
		Page:      page,
		PageCount: count,
		Total:     s.state.Result.Total,
		HasPrev:   page > 1,
		HasNext:   page < count,
	}
}

// PageCount is ceil(total/limit), never less than 1.
func PageCount(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// ClampPage bounds page into [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if page < 1 {
		return 1
	}
	if page > pageCount {
		return pageCount
	}
	return page
}
