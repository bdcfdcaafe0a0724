package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos para Audit.
const (
	AuditProcessing = "processing"
	AuditCompleted  = "completed"
	AuditFailed     = "failed"
)

// BillExtraction datos de consumo extraídos de una factura de servicios por el servicio de IA.
type BillExtraction struct {
	Provider          string          `json:"provider"`
	Usage             decimal.Decimal `json:"usage"`
	Unit              string          `json:"unit"`
	Period            string          `json:"period"`
	CarbonFootprintKg decimal.Decimal `json:"carbon_footprint_kg"`
	ConfidenceScore   float64         `json:"confidence_score"`
}

// Audit representa una auditoría de factura de un tenant: el archivo subido
// y los datos extraídos por IA. Extracted es nil mientras la extracción no termina
// o cuando falló.
type Audit struct {
	ID        string
	UserID    string
	FileURL   string
	Extracted *BillExtraction // persistido como jsonb
	Status    string          // processing, completed, failed
	CreatedAt time.Time
}

// CarbonStats métricas agregadas sobre las auditorías de un tenant.
type CarbonStats struct {
	TotalEmissionsKg decimal.Decimal
	MonthlyTrendPct  decimal.Decimal // variación porcentual del último mes vs el anterior
	ComplianceScore  int             // 0–100, proporción de auditorías completadas
	AuditsCount      int
}
