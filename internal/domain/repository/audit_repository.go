package repository

import (
	"context"

	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// AuditRepository define el puerto de persistencia para Audit.
type AuditRepository interface {
	Create(ctx context.Context, a *entity.Audit) error
	GetByID(ctx context.Context, id string) (*entity.Audit, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Audit, error)
	StatsByUser(ctx context.Context, userID string) (*entity.CarbonStats, error)
}
