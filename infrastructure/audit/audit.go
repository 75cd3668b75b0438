package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"

	"userdesk/models"
)

const (
	ActionCreate = "user.create"
	ActionUpdate = "user.update"
	ActionDelete = "user.delete"
)

// Service writes audit records inside the caller transaction.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Write records one change. The request id comes from chi's RequestID middleware when present.
func (s *Service) Write(ctx context.Context, tx bun.Tx, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("audit before: %w", err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("audit after: %w", err)
	}
	log := &models.AuditLog{
		RequestID:  middleware.GetReqID(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// ForEntity returns the history of one entity, oldest first.
func (s *Service) ForEntity(ctx context.Context, tx bun.Tx, entityType, entityID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := tx.NewSelect().
		Model(&logs).
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("id ASC").
		Scan(ctx)
	return logs, err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
