//go:build js && wasm

package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"syscall/js"
	"time"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/frontend/adminUsers/view"
	"userdesk/infrastructure/logging"
	"userdesk/infrastructure/userapi"
)

func main() {
	cfg := readConfig()
	logger := logging.New(consoleWriter{}, "info", "text")

	doc := js.Global().Get("document")
	surface := &domSurface{doc: doc}
	renderer := view.NewHTMLRenderer(surface, view.WithBadgeBase(cfg.apiURL), view.WithRendererLogger(logger))
	screen := adminusers.NewScreen(
		userapi.New(cfg.apiURL),
		renderer,
		adminusers.WithLogger(logger),
		adminusers.WithPageSize(cfg.pageSize),
		adminusers.WithSearchDelay(cfg.searchDelay),
		adminusers.WithLocation(hashLocation{}),
	)

	bind(doc, screen)
	if err := screen.Run(context.Background()); err != nil {
		logger.Error("admin screen stopped", slog.Any("err", err))
	}
}

type settings struct {
	apiURL      string
	pageSize    int
	searchDelay time.Duration
}

func readConfig() settings {
	s := settings{apiURL: "/api", pageSize: adminusers.DefaultPageSize, searchDelay: adminusers.DefaultSearchDelay}
	if c := js.Global().Get("userdesk"); !c.IsUndefined() && !c.IsNull() {
		readOverrides(&s, c)
	}
	if strings.HasPrefix(s.apiURL, "/") {
		s.apiURL = js.Global().Get("location").Get("origin").String() + s.apiURL
	}
	return s
}

func readOverrides(s *settings, c js.Value) {
	if v := c.Get("apiURL"); v.Type() == js.TypeString && v.String() != "" {
		s.apiURL = strings.TrimSuffix(v.String(), "/")
	}
	if v := c.Get("pageSize"); v.Type() == js.TypeNumber && v.Int() > 0 {
		s.pageSize = v.Int()
	}
	if v := c.Get("searchDelayMS"); v.Type() == js.TypeNumber && v.Int() > 0 {
		s.searchDelay = time.Duration(v.Int()) * time.Millisecond
	}
}

// bind routes DOM events to the screen. JS callbacks must not block, so they read what
// they need from the event and queue the screen call for a forwarding goroutine that keeps
// their order.
func bind(doc js.Value, screen *adminusers.Screen) {
	queue := make(chan func(), 256)
	go func() {
		for call := range queue {
			call()
		}
	}()
	on := func(target js.Value, event string, fn func(ev js.Value) func()) {
		target.Call("addEventListener", event, js.FuncOf(func(_ js.Value, args []js.Value) any {
			if call := fn(args[0]); call != nil {
				queue <- call
			}
			return nil
		}))
	}

	on(doc.Call("getElementById", "search"), "input", func(ev js.Value) func() {
		text := ev.Get("target").Get("value").String()
		return func() { screen.Search(text) }
	})

	on(doc.Call("getElementById", view.FormCreate), "submit", func(ev js.Value) func() {
		ev.Call("preventDefault")
		in := formInput(ev.Get("target"))
		return func() { screen.SubmitCreate(in) }
	})

	// Modal content is replaced wholesale, so its form is handled by delegation.
	on(doc, "submit", func(ev js.Value) func() {
		if ev.Get("target").Get("id").String() != "edit-form" {
			return nil
		}
		ev.Call("preventDefault")
		in := formInput(ev.Get("target"))
		return func() { screen.SubmitEdit(in) }
	})

	on(doc, "click", func(ev js.Value) func() {
		el := ev.Get("target").Call("closest", "[data-action]")
		if el.IsNull() {
			return nil
		}
		data := el.Get("dataset")
		id, _ := strconv.ParseInt(data.Get("id").String(), 10, 64)
		switch data.Get("action").String() {
		case "edit":
			return func() { screen.OpenEdit(id) }
		case "delete":
			return func() { screen.RequestDelete(id) }
		case "prev":
			return screen.PrevPage
		case "next":
			return screen.NextPage
		case "retry":
			return screen.Retry
		case "confirm":
			return screen.Confirm
		case "cancel":
			return screen.Cancel
		case "close-detail":
			return screen.CloseDetail
		}
		return nil
	})

	on(doc, "keydown", func(ev js.Value) func() {
		if ev.Get("key").String() != "Escape" {
			return nil
		}
		return screen.Cancel
	})

	on(js.Global(), "hashchange", func(js.Value) func() {
		hash := js.Global().Get("location").Get("hash").String()
		return func() { screen.Navigate(hash) }
	})
}

func formInput(form js.Value) adminusers.UserInput {
	field := func(name string) string {
		el := form.Get("elements").Get(name)
		if el.IsUndefined() || el.IsNull() {
			return ""
		}
		return el.Get("value").String()
	}
	return adminusers.UserInput{Name: field("name"), Email: field("email"), Role: adminusers.Role(field("role"))}
}

type domSurface struct {
	doc js.Value
}

func (d *domSurface) el(id string) js.Value {
	return d.doc.Call("getElementById", id)
}

func (d *domSurface) Replace(region view.Region, html string) {
	if el := d.el(string(region)); !el.IsNull() {
		el.Set("innerHTML", html)
	}
}

func (d *domSurface) Show(region view.Region) {
	if el := d.el(string(region)); !el.IsNull() {
		el.Set("hidden", false)
	}
}

func (d *domSurface) Hide(region view.Region) {
	if el := d.el(string(region)); !el.IsNull() {
		el.Set("hidden", true)
	}
}

func (d *domSurface) SetFormDisabled(form string, disabled bool) {
	el := d.el(form)
	if el.IsNull() {
		return
	}
	elements := el.Get("elements")
	for i := 0; i < elements.Length(); i++ {
		elements.Index(i).Set("disabled", disabled)
	}
}

func (d *domSurface) ResetForm(form string) {
	if el := d.el(form); !el.IsNull() {
		el.Call("reset")
	}
}

// hashLocation is the browser URL fragment.
type hashLocation struct{}

func (hashLocation) Fragment() string {
	return js.Global().Get("location").Get("hash").String()
}

// SetFragment uses pushState so the change does not fire hashchange back at the screen.
func (hashLocation) SetFragment(fragment string) {
	loc := js.Global().Get("location")
	url := loc.Get("pathname").String() + loc.Get("search").String() + fragment
	js.Global().Get("history").Call("pushState", nil, "", url)
}

// consoleWriter sends log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
