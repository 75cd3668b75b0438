package http

import (
	"github.com/go-chi/chi/v5"

	usersapi "userdesk/frontend/usersApi"
)

// RegisterUserRoutes registers the user directory resource under r.
func (s *Server) RegisterUserRoutes(r chi.Router) chi.Router {
	r.Get("/users", usersapi.ListUsersQueryHandler(s.DB))
	r.Post("/users", usersapi.CreateUserCommandHandler(s.DB, s.Audit))
	r.Get("/users/{id}", usersapi.GetUserQueryHandler(s.DB, s.UserCache))
	r.Put("/users/{id}", usersapi.UpdateUserCommandHandler(s.DB, s.Audit, s.UserCache))
	r.Patch("/users/{id}", usersapi.UpdateUserCommandHandler(s.DB, s.Audit, s.UserCache))
	r.Delete("/users/{id}", usersapi.DeleteUserCommandHandler(s.DB, s.Audit, s.UserCache))
	r.Get("/users/{id}/badge.pdf", usersapi.UserBadgeQueryHandler(s.DB, s.UserCache, s.PublicURL))
	return r
}
