package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Huella-api/internal/application/dto"
	"github.com/jhoicas/Huella-api/internal/application/ports"
	"github.com/jhoicas/Huella-api/internal/domain"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

// extractionTimeout las facturas son documentos grandes; los modelos multimodales
// pueden tardar bastante más que una llamada de texto.
const extractionTimeout = 30 * time.Second

// AuditUseCase orquesta las auditorías de facturas del tenant: extracción por IA
// y persistencia del resultado.
type AuditUseCase struct {
	audits    repository.AuditRepository
	extractor ports.BillExtractor
}

// NewAuditUseCase construye el caso de uso inyectando el puerto de extracción.
func NewAuditUseCase(audits repository.AuditRepository, extractor ports.BillExtractor) *AuditUseCase {
	return &AuditUseCase{audits: audits, extractor: extractor}
}

// Upload procesa una factura subida: extrae los datos de consumo con IA y
// persiste la auditoría. Una extracción fallida también se registra (status
// failed): el tenant ve el intento y puede reintentar con otro archivo.
func (uc *AuditUseCase) Upload(ctx context.Context, userID string, in dto.UploadBillRequest) (*dto.AuditResponse, error) {
	if in.FileData == "" || in.MimeType == "" {
		return nil, domain.ErrInvalidInput
	}

	audit := &entity.Audit{
		ID:        uuid.New().String(),
		UserID:    userID,
		FileURL:   in.FileName,
		Status:    entity.AuditProcessing,
		CreatedAt: time.Now(),
	}

	extractCtx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	extracted, err := uc.extractor.ExtractUtilityBill(extractCtx, in.FileData, in.MimeType)
	if err != nil {
		audit.Status = entity.AuditFailed
	} else {
		audit.Status = entity.AuditCompleted
		audit.Extracted = extracted
	}

	if createErr := uc.audits.Create(ctx, audit); createErr != nil {
		return nil, fmt.Errorf("persistir auditoría: %w", createErr)
	}
	return toAuditResponse(audit), nil
}

// List lista las auditorías del tenant con paginación.
func (uc *AuditUseCase) List(ctx context.Context, userID string, page dto.PageRequest) (*dto.AuditListResponse, error) {
	page.DefaultPage()
	list, err := uc.audits.ListByUser(ctx, userID, page.Limit, page.Offset)
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

// Stats calcula las métricas agregadas del dashboard del tenant.
func (uc *AuditUseCase) Stats(ctx context.Context, userID string) (*dto.CarbonStatsResponse, error) {
	stats, err := uc.audits.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.CarbonStatsResponse{
		TotalEmissionsKg: stats.TotalEmissionsKg,
		MonthlyTrendPct:  stats.MonthlyTrendPct,
		ComplianceScore:  stats.ComplianceScore,
		AuditsCount:      stats.AuditsCount,
	}, nil
}

func toAuditResponse(a *entity.Audit) *dto.AuditResponse {
	if a == nil {
		return nil
	}
	resp := &dto.AuditResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		FileURL:   a.FileURL,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
	if a.Extracted != nil {
		resp.Extracted = &dto.BillExtractionDTO{
			Provider:          a.Extracted.Provider,
			Usage:             a.Extracted.Usage,
			Unit:              a.Extracted.Unit,
			Period:            a.Extracted.Period,
			CarbonFootprintKg: a.Extracted.CarbonFootprintKg,
			ConfidenceScore:   a.Extracted.ConfidenceScore,
		}
	}
	return resp
}
