package usecase

import (
	"context"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/domain"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

// AdminUseCase operaciones del operador sobre las cuentas de tenant: listado,
// aprobación/suspensión y corrección de datos. Los perfiles nunca se borran;
// las cuentas se gestionan vía status.
type AdminUseCase struct {
	profiles repository.ProfileRepository
	audits   repository.AuditRepository
}

// NewAdminUseCase construye el caso de uso del operador.
func NewAdminUseCase(profiles repository.ProfileRepository, audits repository.AuditRepository) *AdminUseCase {
	return &AdminUseCase{profiles: profiles, audits: audits}
}

// ListProfiles lista todos los perfiles ordenados por fecha de creación.
func (uc *AdminUseCase) ListProfiles(ctx context.Context, page dto.PageRequest) (*dto.ProfileListResponse, error) {
	page.DefaultPage()
	list, err := uc.profiles.ListByCreatedAt(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProfileResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProfileResponse(p))
	}
	return &dto.ProfileListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateStatus aplica una transición de estado de cuenta: pending→active y
// active↔suspended. Cualquier otro salto devuelve ErrInvalidTransition.
func (uc *AdminUseCase) UpdateStatus(ctx context.Context, id, status string) (*dto.ProfileResponse, error) {
	if !entity.ValidStatus(status) || status == entity.StatusPending {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	if !entity.CanTransition(p.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	if err := uc.profiles.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	p.Status = status
	return ToProfileResponse(p), nil
}

// UpdateCompanyName corrige el nombre de empresa de un perfil.
func (uc *AdminUseCase) UpdateCompanyName(ctx context.Context, id, companyName string) (*dto.ProfileResponse, error) {
	if companyName == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	if err := uc.profiles.UpdateCompanyName(ctx, id, companyName); err != nil {
		return nil, err
	}
	p.CompanyName = companyName
	return ToProfileResponse(p), nil
}

// TenantAudits lista las auditorías de un tenant concreto (vista del operador).
func (uc *AdminUseCase) TenantAudits(ctx context.Context, tenantID string, page dto.PageRequest) (*dto.AuditListResponse, error) {
	page.DefaultPage()
	list, err := uc.audits.ListByUser(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toAuditResponse(a))
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ToProfileResponse convierte la entidad a su DTO de salida.
func ToProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:          p.ID,
		CompanyName: p.CompanyName,
		IsAdmin:     p.IsAdmin,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
