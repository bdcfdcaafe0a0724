package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UploadBillRequest entrada para subir una factura de servicios a auditar.
// FileData es el documento en base64; MimeType suele ser image/jpeg, image/png
// o application/pdf.
type UploadBillRequest struct {
	FileName string `json:"file_name" validate:"required"`
	FileData string `json:"file_data" validate:"required"`
	MimeType string `json:"mime_type" validate:"required"`
}

// BillExtractionDTO datos extraídos por el servicio de IA.
type BillExtractionDTO struct {
	Provider          string          `json:"provider"`
	Usage             decimal.Decimal `json:"usage"`
	Unit              string          `json:"unit"`
	Period            string          `json:"period,omitempty"`
	CarbonFootprintKg decimal.Decimal `json:"carbon_footprint_kg"`
	ConfidenceScore   float64         `json:"confidence_score"`
}

// AuditResponse salida de una auditoría.
type AuditResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	FileURL   string             `json:"file_url"`
	Extracted *BillExtractionDTO `json:"extracted_data,omitempty"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// AuditListResponse listado de auditorías de un tenant.
type AuditListResponse struct {
	Items []AuditResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// CarbonStatsResponse métricas agregadas para el dashboard del tenant.
type CarbonStatsResponse struct {
	TotalEmissionsKg decimal.Decimal `json:"total_emissions_kg"`
	MonthlyTrendPct  decimal.Decimal `json:"monthly_trend_pct"`
	ComplianceScore  int             `json:"compliance_score"`
	AuditsCount      int             `json:"audits_count"`
}
