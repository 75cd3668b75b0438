package adminusers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestScreenInitialLoadExample(t *testing.T) {
	h := startScreen(t, "")

	q := h.loadPage(12)
	if diff := cmp.Diff(ListQuery{Page: 1, Limit: 5}, q); diff != "" {
		t.Fatalf("initial query mismatch (-want +got):\n%s", diff)
	}

	view := h.render.last(t, "list").(listView)
	if len(view.Result.Items) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(view.Result.Items))
	}
	want := Pager{Page: 1, PageCount: 3, Total: 12, HasPrev: false, HasNext: true}
	if diff := cmp.Diff(want, view.Pager); diff != "" {
		t.Fatalf("pager mismatch (-want +got):\n%s", diff)
	}
	if h.render.count("loading") != 1 {
		t.Fatalf("expected a loading placeholder before the first render")
	}
}

func TestScreenRunTwice(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(3)

	if err := h.screen.Run(context.Background()); !errors.Is(err, ErrScreenRunning) {
		t.Fatalf("expected ErrScreenRunning, got %v", err)
	}
}

func TestScreenSearchIsDebounced(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)
	h.screen.NextPage()
	h.loadPage(12)

	for _, text := range []string{"a", "an", "ana"} {
		h.screen.Search(text)
	}

	c := h.expect("list")
	if diff := cmp.Diff(ListQuery{Page: 1, Limit: 5, Q: "ana"}, c.query); diff != "" {
		t.Fatalf("search query mismatch (-want +got):\n%s", diff)
	}
	h.expectNoCall(100 * time.Millisecond)
	c.answer(reply{result: ListResult{Items: []User{{ID: 3, Name: "Ana"}}, Total: 1}})
	h.await("list.applied")

	if st := h.state(); st.Query.Q != "ana" || st.Result.Total != 1 {
		t.Fatalf("unexpected state after search: %+v", st)
	}
}

func TestScreenSearchKeystrokesSpreadOverWindow(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	for _, text := range []string{"b", "br", "bru"} {
		h.screen.Search(text)
		time.Sleep(10 * time.Millisecond)
	}

	c := h.expect("list")
	if c.query.Q != "bru" {
		t.Fatalf("expected final text, got %q", c.query.Q)
	}
	h.expectNoCall(100 * time.Millisecond)
	c.answer(reply{result: ListResult{}})
	h.await("list.applied")
}

func TestScreenDiscardsOlderResponse(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	h.screen.GoToPage(2)
	h.screen.GoToPage(3)
	calls := h.expectN("list", 2)
	older := findCall(t, calls, func(c *apiCall) bool { return c.query.Page == 2 })
	newer := findCall(t, calls, func(c *apiCall) bool { return c.query.Page == 3 })

	newerResult := pageOf(newer.query, 12)
	newer.answer(reply{result: newerResult})
	h.await("list.applied")

	older.answer(reply{result: pageOf(older.query, 12)})
	h.await("list.stale")

	view := h.render.last(t, "list").(listView)
	if diff := cmp.Diff(newerResult, view.Result); diff != "" {
		t.Fatalf("rendered list mismatch (-want +got):\n%s", diff)
	}
	st := h.state()
	if st.Query.Page != 3 {
		t.Fatalf("expected page 3 to stay live, got %d", st.Query.Page)
	}
	if diff := cmp.Diff(newerResult, st.Result); diff != "" {
		t.Fatalf("store result mismatch (-want +got):\n%s", diff)
	}
}

func TestScreenDiscardsOlderFailure(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	h.screen.GoToPage(2)
	h.screen.GoToPage(3)
	calls := h.expectN("list", 2)
	older := findCall(t, calls, func(c *apiCall) bool { return c.query.Page == 2 })
	newer := findCall(t, calls, func(c *apiCall) bool { return c.query.Page == 3 })

	older.answer(reply{err: &Failure{Status: http.StatusBadGateway, Message: "Bad Gateway"}})
	h.await("list.stale")
	newer.answer(reply{result: pageOf(newer.query, 12)})
	h.await("list.applied")

	if h.render.count("listError") != 0 {
		t.Fatalf("stale failure must not be rendered")
	}
}

func TestScreenEqualQueriesNewestWins(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	h.screen.Reload()
	first := h.expect("list")
	h.screen.Reload()
	second := h.expect("list")

	second.answer(reply{result: pageOf(second.query, 13)})
	h.await("list.applied")
	first.answer(reply{result: pageOf(first.query, 12)})
	h.await("list.stale")

	if total := h.state().Result.Total; total != 13 {
		t.Fatalf("expected the newest response to stay applied, total = %d", total)
	}
}

func TestScreenPaginationClampsAndNoops(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	h.screen.PrevPage()
	h.await("page.noop")
	h.screen.GoToPage(1)
	h.await("page.noop")

	h.screen.GoToPage(99)
	if q := h.loadPage(12); q.Page != 3 {
		t.Fatalf("expected clamp to page 3, got %d", q.Page)
	}
	h.screen.NextPage()
	h.await("page.noop")
	h.expectNoCall(50 * time.Millisecond)

	view := h.render.last(t, "list").(listView)
	want := Pager{Page: 3, PageCount: 3, Total: 12, HasPrev: true, HasNext: false}
	if diff := cmp.Diff(want, view.Pager); diff != "" {
		t.Fatalf("pager mismatch (-want +got):\n%s", diff)
	}
}

func TestScreenListFailureAndRetry(t *testing.T) {
	h := startScreen(t, "")

	c := h.expect("list")
	c.answer(reply{err: &Failure{Status: http.StatusInternalServerError, Message: "Internal Server Error"}})
	h.await("list.failed")
	if msg := h.render.last(t, "listError").(string); msg != "HTTP 500 - Internal Server Error" {
		t.Fatalf("unexpected error text %q", msg)
	}

	h.screen.Retry()
	if q := h.loadPage(4); q.Page != 1 {
		t.Fatalf("retry should refetch the same query, got %+v", q)
	}
	if h.render.count("loading") != 2 {
		t.Fatalf("expected a loading placeholder per attempt, got %d", h.render.count("loading"))
	}
}

func TestScreenClampsWhenTotalShrinks(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)
	h.screen.GoToPage(3)
	h.loadPage(12)

	h.screen.Reload()
	c := h.expect("list")
	c.answer(reply{result: ListResult{Items: []User{}, Total: 10}})
	h.await("list.clamped")

	if q := h.loadPage(10); q.Page != 2 {
		t.Fatalf("expected refetch of page 2, got %d", q.Page)
	}
	view := h.render.last(t, "list").(listView)
	if view.Pager.Page != 2 || view.Pager.PageCount != 2 {
		t.Fatalf("unexpected pager %+v", view.Pager)
	}
}

func TestScreenCreateInvalidStaysLocal(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(2)

	h.screen.SubmitCreate(UserInput{Name: "Jo", Email: "nope"})
	h.await("create.invalid")
	h.expectNoCall(50 * time.Millisecond)

	got := h.render.last(t, "createErrors").(createErrors)
	for _, key := range []string{"name", "email", "role"} {
		if got.Fields[key] == "" {
			t.Fatalf("missing %q in %+v", key, got.Fields)
		}
	}
	if h.render.count("createBusy") != 0 {
		t.Fatalf("form must not be disabled for invalid input")
	}
}

func TestScreenCreateResetsToFirstPage(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)
	h.screen.GoToPage(2)
	h.loadPage(12)

	h.screen.SubmitCreate(UserInput{Name: "  Dora Reis ", Email: "dora@example.com", Role: RoleEditor})
	c := h.expect("create")
	if diff := cmp.Diff(UserInput{Name: "Dora Reis", Email: "dora@example.com", Role: RoleEditor}, c.in); diff != "" {
		t.Fatalf("create input mismatch (-want +got):\n%s", diff)
	}

	// a second submit while the first is in flight is ignored
	h.screen.SubmitCreate(UserInput{Name: "Dora Reis", Email: "dora@example.com", Role: RoleEditor})
	h.await("create.ignored")

	c.answer(reply{user: User{ID: 13, Name: "Dora Reis", Email: "dora@example.com", Role: RoleEditor}})
	h.await("create.done")

	list := h.expect("list")
	if list.query.Page != 1 {
		t.Fatalf("expected page 1 after create, got %d", list.query.Page)
	}
	list.answer(reply{result: pageOf(list.query, 13)})
	h.await("list.applied")

	view := h.render.last(t, "list").(listView)
	if view.Result.Total != 13 || view.Result.Items[0].ID != 13 {
		t.Fatalf("created record missing from page 1: %+v", view.Result)
	}
	if busy := h.render.last(t, "createBusy").(bool); busy {
		t.Fatalf("form left disabled")
	}
	if h.render.count("resetCreate") != 1 {
		t.Fatalf("expected the form to be reset once")
	}
	notice := h.render.last(t, "notify").(Notice)
	if diff := cmp.Diff(Notice{Kind: NoticeSuccess, Text: "User created: Dora Reis"}, notice); diff != "" {
		t.Fatalf("notice mismatch (-want +got):\n%s", diff)
	}
}

func TestScreenCreateFailureReenablesForm(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(2)

	h.screen.SubmitCreate(UserInput{Name: "Dora Reis", Email: "dora@example.com", Role: RoleEditor})
	c := h.expect("create")
	c.answer(reply{err: &Failure{Status: http.StatusBadRequest, Message: "Bad Request"}})
	h.await("create.failed")

	got := h.render.last(t, "createErrors").(createErrors)
	if got.Message != "HTTP 400 - Bad Request" {
		t.Fatalf("unexpected inline error %q", got.Message)
	}
	if busy := h.render.last(t, "createBusy").(bool); busy {
		t.Fatalf("form left disabled after failure")
	}
	if h.render.count("resetCreate") != 0 {
		t.Fatalf("form must keep its values after failure")
	}
	h.expectNoCall(50 * time.Millisecond)

	// usable again
	h.screen.SubmitCreate(UserInput{Name: "Dora Reis", Email: "dora@example.com", Role: RoleEditor})
	h.expect("create").answer(reply{user: User{ID: 3, Name: "Dora Reis"}})
	h.await("create.done")
	h.loadPage(3)
}

func TestScreenEditFlow(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(7)

	h.screen.OpenEdit(4)
	get := h.expect("get")
	if get.id != 4 {
		t.Fatalf("expected get for 4, got %d", get.id)
	}
	original := User{ID: 4, Name: "Eva Souza", Email: "eva@example.com", Role: RoleUser}
	get.answer(reply{user: original})
	h.await("edit.opened")

	form := h.render.last(t, "editForm").(EditForm)
	if diff := cmp.Diff(EditForm{UserID: 4, Values: original.Input()}, form); diff != "" {
		t.Fatalf("edit form mismatch (-want +got):\n%s", diff)
	}

	h.screen.SubmitEdit(UserInput{Name: "Ev", Email: "eva@example.com", Role: RoleUser})
	h.await("edit.invalid")
	form = h.render.last(t, "editForm").(EditForm)
	if form.Errors["name"] == "" || form.Error == "" {
		t.Fatalf("expected inline name error, got %+v", form)
	}
	h.expectNoCall(50 * time.Millisecond)

	edited := UserInput{Name: "Eva Souza", Email: "eva@example.com", Role: RoleAdmin}
	h.screen.SubmitEdit(edited)
	h.screen.Confirm()
	update := h.expect("update")
	if update.id != 4 {
		t.Fatalf("expected update of 4, got %d", update.id)
	}
	if diff := cmp.Diff(edited, update.in); diff != "" {
		t.Fatalf("update input mismatch (-want +got):\n%s", diff)
	}
	dialog := h.render.last(t, "confirm").(ConfirmDialog)
	if !dialog.Busy || dialog.Prompt != confirmEditPrompt {
		t.Fatalf("expected busy confirm dialog, got %+v", dialog)
	}

	h.screen.Cancel()
	h.await("cancel.ignored")

	update.answer(reply{err: &Failure{Status: http.StatusConflict, Message: "Conflict"}})
	h.await("edit.failed")
	form = h.render.last(t, "editForm").(EditForm)
	if form.Error != "HTTP 409 - Conflict" || form.Values != edited {
		t.Fatalf("expected edit form with inline error, got %+v", form)
	}
	if h.render.count("closeModal") != 0 {
		t.Fatalf("modal must stay open after a failed update")
	}

	h.screen.SubmitEdit(edited)
	h.screen.Confirm()
	update = h.expect("update")
	update.answer(reply{user: User{ID: 4, Name: edited.Name, Email: edited.Email, Role: edited.Role}})
	h.await("edit.done")
	h.loadPage(7)

	if h.render.count("closeModal") != 1 {
		t.Fatalf("expected the modal to close once")
	}
	if notice := h.render.last(t, "notify").(Notice); notice.Text != "User updated" {
		t.Fatalf("unexpected notice %+v", notice)
	}
}

func TestScreenEditLoadFailureNotifies(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(2)

	h.screen.OpenEdit(9)
	h.expect("get").answer(reply{err: &Failure{Status: http.StatusNotFound, Message: "Not Found"}})
	h.await("edit.failed")

	notice := h.render.last(t, "notify").(Notice)
	if notice.Kind != NoticeError {
		t.Fatalf("expected error notice, got %+v", notice)
	}
	if h.render.count("editForm") != 0 {
		t.Fatalf("edit form must not open for a failed load")
	}

	h.screen.Confirm()
	h.await("confirm.ignored")
}

func TestScreenCancelDropsPendingEdit(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(2)

	h.screen.OpenEdit(2)
	get := h.expect("get")
	h.screen.Cancel()
	get.answer(reply{user: User{ID: 2, Name: "Gil"}})
	h.await("edit.stale")

	if h.render.count("editForm") != 0 {
		t.Fatalf("cancelled edit must not open")
	}
}

func TestScreenDeleteSoleItemOnLastPage(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(11)
	h.screen.GoToPage(3)
	if q := h.loadPage(11); q.Page != 3 {
		t.Fatalf("expected page 3, got %d", q.Page)
	}

	h.screen.RequestDelete(1)
	if dialog := h.render.last(t, "confirm").(ConfirmDialog); dialog.Prompt != confirmDeletePrompt {
		t.Fatalf("unexpected dialog %+v", dialog)
	}
	h.screen.Confirm()
	remove := h.expect("remove")
	if remove.id != 1 {
		t.Fatalf("expected remove of 1, got %d", remove.id)
	}
	remove.answer(reply{})
	h.await("delete.done")

	list := h.expect("list")
	if list.query.Page != 2 {
		t.Fatalf("expected refetch of page 2, got %d", list.query.Page)
	}
	list.answer(reply{result: pageOf(list.query, 10)})
	h.await("list.applied")

	view := h.render.last(t, "list").(listView)
	want := Pager{Page: 2, PageCount: 2, Total: 10, HasPrev: true, HasNext: false}
	if diff := cmp.Diff(want, view.Pager); diff != "" {
		t.Fatalf("pager mismatch (-want +got):\n%s", diff)
	}
	if h.render.count("closeModal") != 1 {
		t.Fatalf("expected the dialog to close")
	}
	if notice := h.render.last(t, "notify").(Notice); notice.Text != "User deleted" {
		t.Fatalf("unexpected notice %+v", notice)
	}
}

func TestScreenDeleteOnlyPageStaysOnPageOne(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(1)

	h.screen.RequestDelete(1)
	h.screen.Confirm()
	h.expect("remove").answer(reply{})
	h.await("delete.done")

	if q := h.loadPage(0); q.Page != 1 {
		t.Fatalf("expected page 1, got %d", q.Page)
	}
}

func TestScreenDeleteFailureKeepsDialog(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(3)

	h.screen.RequestDelete(2)
	h.screen.Confirm()
	h.expect("remove").answer(reply{err: &Failure{Status: http.StatusInternalServerError, Message: "Internal Server Error"}})
	h.await("delete.failed")

	dialog := h.render.last(t, "confirm").(ConfirmDialog)
	if dialog.Busy || dialog.Error != "HTTP 500 - Internal Server Error" {
		t.Fatalf("expected dialog with inline error, got %+v", dialog)
	}
	if h.render.count("closeModal") != 0 {
		t.Fatalf("dialog must stay open after a failed delete")
	}
	h.expectNoCall(50 * time.Millisecond)

	h.screen.Cancel()
	h.screen.Confirm()
	h.await("confirm.ignored")
	if h.render.count("closeModal") != 1 {
		t.Fatalf("cancel should close the dialog")
	}
}

func TestScreenDetailLeavesListAlone(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)
	h.screen.GoToPage(2)
	h.loadPage(12)
	before := h.state()
	lists := h.render.count("list")

	h.loc.SetFragment("#/users/7")
	h.screen.Navigate(h.loc.Fragment())
	get := h.expect("get")
	if get.id != 7 {
		t.Fatalf("expected detail fetch for 7, got %d", get.id)
	}
	get.answer(reply{user: User{ID: 7, Name: "User 7", Email: "user7@example.com", Role: RoleUser}})
	h.await("detail.shown")

	if diff := cmp.Diff(before, h.state()); diff != "" {
		t.Fatalf("detail navigation changed list state (-want +got):\n%s", diff)
	}
	if h.render.count("list") != lists || h.render.count("loading") != 2 {
		t.Fatalf("detail navigation re-rendered the list")
	}
	if u := h.render.last(t, "detail").(User); u.ID != 7 {
		t.Fatalf("unexpected detail %+v", u)
	}
	h.expectNoCall(50 * time.Millisecond)
}

func TestScreenDetailNotFoundAndClose(t *testing.T) {
	h := startScreen(t, "#/users/99")

	var list, get *apiCall
	for i := 0; i < 2; i++ {
		select {
		case c := <-h.api.calls:
			switch c.op {
			case "list":
				list = c
			case "get":
				get = c
			}
		case <-time.After(waitTimeout):
			t.Fatalf("timed out waiting for initial calls")
		}
	}
	if list == nil || get == nil || get.id != 99 {
		t.Fatalf("expected initial list and get(99), got %+v %+v", list, get)
	}

	get.answer(reply{err: &Failure{Status: http.StatusNotFound, Message: "Not Found"}})
	h.await("detail.failed")
	if msg := h.render.last(t, "detailError").(string); msg != "User #99 could not be loaded." {
		t.Fatalf("unexpected detail error %q", msg)
	}

	list.answer(reply{result: pageOf(list.query, 4)})
	h.await("list.applied")
	if h.render.count("listError") != 0 {
		t.Fatalf("detail failure leaked into the list")
	}

	h.screen.CloseDetail()
	h.await("detail.hidden")
	if f := h.loc.Fragment(); f != "" {
		t.Fatalf("expected cleared fragment, got %q", f)
	}
}

func TestScreenDetailLatestNavigationWins(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(12)

	h.screen.ShowDetail(7)
	h.screen.ShowDetail(8)
	calls := h.expectN("get", 2)
	seven := findCall(t, calls, func(c *apiCall) bool { return c.id == 7 })
	eight := findCall(t, calls, func(c *apiCall) bool { return c.id == 8 })

	eight.answer(reply{user: User{ID: 8}})
	h.await("detail.shown")
	seven.answer(reply{user: User{ID: 7}})
	h.await("detail.stale")

	if u := h.render.last(t, "detail").(User); u.ID != 8 {
		t.Fatalf("expected detail 8, got %d", u.ID)
	}
	if f := h.loc.Fragment(); f != "#/users/8" {
		t.Fatalf("unexpected fragment %q", f)
	}

	h.screen.Navigate("#/")
	h.await("detail.hidden")
}

func TestScreenDetailTransportFailure(t *testing.T) {
	h := startScreen(t, "")
	h.loadPage(2)

	h.screen.Navigate("#/users/2")
	h.expect("get").answer(reply{err: &Failure{Message: "connection refused"}})
	h.await("detail.failed")
	if msg := h.render.last(t, "detailError").(string); msg != "connection refused" {
		t.Fatalf("unexpected detail error %q", msg)
	}
}

func TestIndependentScreens(t *testing.T) {
	a := startScreen(t, "")
	b := startScreen(t, "", WithPageSize(10))

	if q := a.loadPage(30); q.Limit != 5 {
		t.Fatalf("screen a limit = %d", q.Limit)
	}
	if q := b.loadPage(30); q.Limit != 10 {
		t.Fatalf("screen b limit = %d", q.Limit)
	}
	a.screen.NextPage()
	a.loadPage(30)

	if page := b.state().Query.Page; page != 1 {
		t.Fatalf("screens share state: b page = %d", page)
	}
}
