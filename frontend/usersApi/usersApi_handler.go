package usersapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/infrastructure/audit"
	"userdesk/infrastructure/badge"
	"userdesk/infrastructure/cache"
	"userdesk/infrastructure/sqlite"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string                 `json:"error"`
	Fields adminusers.FieldErrors `json:"fields,omitempty"`
}

// ListUsersQueryHandler serves GET /users with X-Total-Count.
func ListUsersQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ParseListParams(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		users, total, err := ListUsers(r.Context(), db, params)
		if err != nil {
			slog.Error("users api: list failed", slog.Any("err", err))
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}

		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		w.Header().Set("Access-Control-Expose-Headers", "X-Total-Count")
		writeJSON(w, http.StatusOK, users)
	}
}

// GetUserQueryHandler serves one user, reading through users.
func GetUserQueryHandler(db *sqlite.DB, users *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		user, err := cachedUser(r.Context(), db, users, id)
		if err != nil {
			writeDomainError(w, "load", id, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func CreateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}
		user, err := CreateUser(r.Context(), db, auditSvc, in)
		if err != nil {
			writeDomainError(w, "create", 0, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), user.ID))
		writeJSON(w, http.StatusCreated, user)
	}
}

func UpdateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service, users *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}
		user, err := UpdateUser(r.Context(), db, auditSvc, id, in)
		if err != nil {
			writeDomainError(w, "update", id, err)
			return
		}
		users.Add(user)
		writeJSON(w, http.StatusOK, user)
	}
}

func DeleteUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service, users *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		if err := DeleteUser(r.Context(), db, auditSvc, id); err != nil {
			writeDomainError(w, "delete", id, err)
			return
		}
		users.Remove(id)
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

// UserBadgeQueryHandler renders the user's printable badge. publicURL is the screen's
// base address encoded in the QR code.
func UserBadgeQueryHandler(db *sqlite.DB, users *cache.UserCache, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userID(w, r)
		if !ok {
			return
		}
		user, err := cachedUser(r.Context(), db, users, id)
		if err != nil {
			writeDomainError(w, "badge", id, err)
			return
		}
		createdAt, _ := time.Parse(TimeLayout, user.CreatedAt)
		detailURL := ""
		if publicURL != "" {
			detailURL = strings.TrimSuffix(publicURL, "/") + "/" + adminusers.DetailFragment(user.ID)
		}
		pdfBytes, err := badge.RenderPDF(badge.Badge{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: createdAt,
			DetailURL: detailURL,
		})
		if err != nil {
			slog.Error("users api: badge render failed", slog.Int64("id", id), slog.Any("err", err))
			http.Error(w, "failed to build badge pdf", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=user-%d-badge.pdf", user.ID))
		_, _ = w.Write(pdfBytes)
	}
}

func cachedUser(ctx context.Context, db *sqlite.DB, users *cache.UserCache, id int64) (adminusers.User, error) {
	if u, ok := users.Get(id); ok {
		return u, nil
	}
	u, err := LoadUser(ctx, db, id)
	if err != nil {
		return adminusers.User{}, err
	}
	users.Add(u)
	return u, nil
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (adminusers.UserInput, bool) {
	var in adminusers.UserInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return in, false
	}
	return in, true
}

func writeDomainError(w http.ResponseWriter, op string, id int64, err error) {
	var verr *adminusers.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, adminusers.ErrNotFound):
		writeError(w, http.StatusNotFound, adminusers.ErrNotFound.Error())
	default:
		slog.Error("users api: "+op+" failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to "+op+" user")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("users api: encode response failed", slog.Any("err", err))
	}
}
