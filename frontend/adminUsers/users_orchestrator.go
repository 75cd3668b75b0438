package adminusers

import (
	"context"
	"log/slog"
)

// Search records a keystroke. Only the last text typed before the quiet period elapses
// is fetched, with the page reset to 1.
func (s *Screen) Search(text string) {
	s.dispatch(func() {
		s.searchSeq++
		seq := s.searchSeq
		s.pendingQ = text
		s.search.Debounce(func() {
			s.dispatch(func() { s.flushSearch(seq) })
		})
	})
}

func (s *Screen) flushSearch(seq uint64) {
	// A newer keystroke re-armed the timer after this one fired.
	if seq != s.searchSeq {
		return
	}
	if _, err := s.store.SetQuery(SearchFor(s.pendingQ), PageTo(1)); err != nil {
		s.log.Error("admin users: search query rejected", slog.Any("err", err))
		return
	}
	s.fetch()
}

// GoToPage clamps page into [1, page count] and fetches it unless it is already shown.
func (s *Screen) GoToPage(page int) {
	s.dispatch(func() { s.goToPage(page) })
}

func (s *Screen) NextPage() {
	s.dispatch(func() { s.goToPage(s.store.Query().Page + 1) })
}

func (s *Screen) PrevPage() {
	s.dispatch(func() { s.goToPage(s.store.Query().Page - 1) })
}

func (s *Screen) goToPage(page int) {
	target := ClampPage(page, s.store.PageCount())
	if target == s.store.Query().Page {
		s.note("page.noop", slog.Int("requested", page))
		return
	}
	if _, err := s.store.SetQuery(PageTo(target)); err != nil {
		s.log.Error("admin users: page query rejected", slog.Any("err", err))
		return
	}
	s.fetch()
}

// Retry reissues the fetch for the live query, typically from the error affordance.
func (s *Screen) Retry() {
	s.dispatch(s.fetch)
}

// Reload re-runs the current fetch.
func (s *Screen) Reload() {
	s.dispatch(s.fetch)
}

// fetch runs on the loop: placeholder first, then an async list call whose answer is
// committed only while its ticket is still the latest one.
func (s *Screen) fetch() {
	ticket := s.store.Begin()
	s.render.Loading()
	s.note("list.issued", slog.Int("page", ticket.Query.Page), slog.String("q", ticket.Query.Q))

	s.spawn(func(ctx context.Context) func() {
		result, err := s.api.List(ctx, ticket.Query)
		return func() { s.commitList(ticket, result, err) }
	})
}

func (s *Screen) commitList(ticket Ticket, result ListResult, err error) {
	if !s.store.Current(ticket) {
		s.note("list.stale", slog.Int("page", ticket.Query.Page), slog.String("q", ticket.Query.Q))
		return
	}
	if err != nil {
		s.log.Warn("admin users: list fetch failed", slog.Int("page", ticket.Query.Page), slog.Any("err", err))
		s.render.ListError(err.Error())
		s.note("list.failed")
		return
	}

	// The total may have shrunk under us (deletes); never show a page past the end.
	if last := PageCount(result.Total, ticket.Query.Limit); ticket.Query.Page > last {
		if _, err := s.store.SetQuery(PageTo(last)); err == nil {
			s.note("list.clamped", slog.Int("from", ticket.Query.Page), slog.Int("to", last))
			s.fetch()
			return
		}
	}

	s.store.ApplyResult(ticket.Query, result)
	s.render.List(s.store.Result(), s.store.Pager())
	s.note("list.applied")
}
