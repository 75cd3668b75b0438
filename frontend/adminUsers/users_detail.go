package adminusers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
)

var detailFragment = regexp.MustCompile(`^#?/users/(\d+)/?$`)

// detailRouter is either list-only (shown == false) or showing id. It never touches the Store.
type detailRouter struct {
	shown bool
	id    int64
	seq   uint64
}

// ParseDetailFragment extracts the user id from a "#/users/<id>" fragment.
func ParseDetailFragment(fragment string) (int64, bool) {
	m := detailFragment.FindStringSubmatch(fragment)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func DetailFragment(id int64) string {
	return fmt.Sprintf("#/users/%d", id)
}

// Navigate reports a change of the location fragment.
func (s *Screen) Navigate(fragment string) {
	s.dispatch(func() { s.navigate(fragment) })
}

// ShowDetail points the location at id and opens its detail panel.
func (s *Screen) ShowDetail(id int64) {
	s.dispatch(func() {
		fragment := DetailFragment(id)
		s.location.SetFragment(fragment)
		s.navigate(fragment)
	})
}

// CloseDetail clears the fragment and hides the panel.
func (s *Screen) CloseDetail() {
	s.dispatch(func() {
		s.location.SetFragment("")
		s.navigate("")
	})
}

func (s *Screen) navigate(fragment string) {
	id, ok := ParseDetailFragment(fragment)
	s.detail.seq++
	if !ok {
		if s.detail.shown {
			s.detail.shown = false
			s.render.HideDetail()
			s.note("detail.hidden")
		}
		return
	}

	s.detail.shown = true
	s.detail.id = id
	seq := s.detail.seq
	s.render.DetailLoading(id)

	s.spawn(func(ctx context.Context) func() {
		user, err := s.api.Get(ctx, id)
		return func() { s.commitDetail(id, seq, user, err) }
	})
}

func (s *Screen) commitDetail(id int64, seq uint64, user User, err error) {
	if !s.detail.shown || s.detail.seq != seq {
		s.note("detail.stale", slog.Int64("id", id))
		return
	}
	if err != nil {
		s.log.Warn("admin users: detail fetch failed", slog.Int64("id", id), slog.Any("err", err))
		msg := err.Error()
		if errors.Is(err, ErrNotFound) {
			msg = fmt.Sprintf("User #%d could not be loaded.", id)
		}
		s.render.DetailError(id, msg)
		s.note("detail.failed")
		return
	}
	s.render.Detail(user)
	s.note("detail.shown")
}
