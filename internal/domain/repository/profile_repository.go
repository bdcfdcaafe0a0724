package repository

import (
	"context"

	"github.com/jhoicas/Huella-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia para Profile (DIP).
// GetByID devuelve (nil, nil) cuando no existe la fila: el aprovisionamiento es
// asíncrono y "sin fila" NO es un error de consulta — los callers deben distinguirlos.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Create(ctx context.Context, p *entity.Profile) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateCompanyName(ctx context.Context, id, companyName string) error
	ListByCreatedAt(ctx context.Context, limit, offset int) ([]*entity.Profile, error)
}
