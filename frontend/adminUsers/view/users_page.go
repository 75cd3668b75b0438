package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	sharedhtml "userdesk/frontend/shared/html"
)

// PageData configures the shell served to the browser.
type PageData struct {
	Title         string
	APIURL        string
	WasmURL       string
	PageSize      int
	SearchDelayMS int64
}

// ScreenBody renders the regions the HTMLRenderer writes into.
func ScreenBody(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fields, err := templ.ToGoHTML(ctx, CreateFormFields())
		if err != nil {
			return err
		}
		spinner, err := templ.ToGoHTML(ctx, Spinner("Loading users…"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, `<header class="topbar"><h1>%s</h1>`+
			`<input id="search" type="search" placeholder="Search by name or email" aria-label="Search users" autocomplete="off"></header>`+
			`<main class="layout"><section class="card"><h2>Create user</h2>`+
			`<form id="%s" novalidate>%s<p id="%s" class="form-error" aria-live="polite"></p>`+
			`<button class="btn primary" type="submit">Create</button></form></section>`+
			`<section class="card"><div id="%s">%s</div><nav id="%s" class="pagination" aria-label="Pagination"></nav></section>`+
			`<aside id="%s" class="detail-slot" hidden></aside></main>`+
			`<div id="%s" class="modal" role="dialog" aria-modal="true" aria-labelledby="modal-title" hidden><div id="%s" class="modal-card"></div></div>`+
			`<div id="%s" class="toast-slot" aria-live="polite"></div>%s`,
			esc(data.Title),
			FormCreate, fields, RegionCreateError,
			RegionList, spinner, RegionPagination,
			RegionDetail,
			RegionModalLayer, RegionModal,
			RegionToast,
			sharedhtml.BootScript(data.WasmURL, data.APIURL, data.PageSize, data.SearchDelayMS))
		return err
	})
}

func ScreenPage(data PageData) templ.Component {
	return sharedhtml.Layout(data.Title, ScreenBody(data))
}

// ScreenPageQueryHandler serves the admin users shell.
func ScreenPageQueryHandler(data PageData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ScreenPage(data).Render(r.Context(), w); err != nil {
			slog.Error("admin users: failed to render shell", slog.Any("err", err))
			http.Error(w, "failed to render users page", http.StatusInternalServerError)
			return
		}
	}
}
