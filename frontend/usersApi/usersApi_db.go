package usersapi

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/infrastructure/audit"
	"userdesk/infrastructure/sqlite"
	"userdesk/models"
)

const entityType = "user"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ListUsers returns one page plus the total number of matching users.
func ListUsers(ctx context.Context, db *sqlite.DB, p ListParams) ([]adminusers.User, int, error) {
	var rows []models.User
	var total int
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&rows)
		if p.Q != "" {
			q = q.Where("u.search_key LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(SearchKey(p.Q))+"%")
		}
		q = q.OrderExpr(p.orderExpr())
		if p.Sort != "id" {
			q = q.OrderExpr("u.id DESC")
		}
		n, err := q.Limit(p.Limit).Offset(p.offset()).ScanAndCount(ctx)
		total = n
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]adminusers.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out, total, nil
}

// LoadUser returns adminusers.ErrNotFound for an unknown id.
func LoadUser(ctx context.Context, db *sqlite.DB, id int64) (adminusers.User, error) {
	var row models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return loadRow(ctx, tx, id, &row)
	})
	if err != nil {
		return adminusers.User{}, err
	}
	return toRecord(row), nil
}

// CreateUser validates in, stores it with a server assigned id and createdAt and audits it.
func CreateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, in adminusers.UserInput) (adminusers.User, error) {
	in, err := validated(in)
	if err != nil {
		return adminusers.User{}, err
	}

	row := models.User{CreatedAt: time.Now().UTC()}
	applyInput(&row, in)
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, audit.ActionCreate, entityType, strconv.FormatInt(row.ID, 10), nil, toRecord(row))
	})
	if err != nil {
		return adminusers.User{}, err
	}
	return toRecord(row), nil
}

// UpdateUser replaces the editable fields; id and createdAt never change.
func UpdateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, id int64, in adminusers.UserInput) (adminusers.User, error) {
	in, err := validated(in)
	if err != nil {
		return adminusers.User{}, err
	}

	var row models.User
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := loadRow(ctx, tx, id, &row); err != nil {
			return err
		}
		before := toRecord(row)
		applyInput(&row, in)
		_, err := tx.NewUpdate().
			Model(&row).
			Column("name", "email", "role", "search_key", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, audit.ActionUpdate, entityType, strconv.FormatInt(id, 10), before, toRecord(row))
	})
	if err != nil {
		return adminusers.User{}, err
	}
	return toRecord(row), nil
}

func DeleteUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var row models.User
		if err := loadRow(ctx, tx, id, &row); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return auditSvc.Write(ctx, tx, audit.ActionDelete, entityType, strconv.FormatInt(id, 10), toRecord(row), nil)
	})
}

// CountUsers returns the size of the directory.
func CountUsers(ctx context.Context, db *sqlite.DB) (int, error) {
	var n int
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		n, err = tx.NewSelect().Model((*models.User)(nil)).Count(ctx)
		return err
	})
	return n, err
}

func loadRow(ctx context.Context, tx bun.Tx, id int64, row *models.User) error {
	err := tx.NewSelect().Model(row).Where("u.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return adminusers.ErrNotFound
	}
	return err
}

func validated(in adminusers.UserInput) (adminusers.UserInput, error) {
	in = in.Trimmed()
	if v := adminusers.ValidateUserInput(in); !v.Valid {
		return in, &adminusers.ValidationError{Fields: v.FieldErrors}
	}
	return in, nil
}
