package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación del puerto AuditRepository sobre PostgreSQL.
// Extracted se persiste como jsonb.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepository construye el adaptador de persistencia para auditorías.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create persiste una auditoría nueva.
func (r *AuditRepo) Create(ctx context.Context, a *entity.Audit) error {
	var extracted []byte
	if a.Extracted != nil {
		b, err := json.Marshal(a.Extracted)
		if err != nil {
			return fmt.Errorf("serializar extracted_data: %w", err)
		}
		extracted = b
	}
	query := `
		INSERT INTO audits (id, user_id, file_url, extracted_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, a.ID, a.UserID, a.FileURL, extracted, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// GetByID obtiene una auditoría por ID. Devuelve (nil, nil) si no existe.
func (r *AuditRepo) GetByID(ctx context.Context, id string) (*entity.Audit, error) {
	query := `
		SELECT id, user_id, file_url, extracted_data, status, created_at
		FROM audits WHERE id = $1`
	a, err := scanAudit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit by id: %w", err)
	}
	return a, nil
}

// ListByUser lista las auditorías de un tenant, más recientes primero.
func (r *AuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Audit, error) {
	query := `
		SELECT id, user_id, file_url, extracted_data, status, created_at
		FROM audits WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()
	var list []*entity.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// StatsByUser agrega emisiones totales, tendencia mensual y score de cumplimiento
// sobre las auditorías completadas del tenant.
func (r *AuditRepo) StatsByUser(ctx context.Context, userID string) (*entity.CarbonStats, error) {
	query := `
		SELECT
			COALESCE(SUM((extracted_data->>'carbon_footprint_kg')::numeric)
				FILTER (WHERE status = 'completed'), 0) AS total_kg,
			COALESCE(SUM((extracted_data->>'carbon_footprint_kg')::numeric)
				FILTER (WHERE status = 'completed'
					AND created_at >= date_trunc('month', now())), 0) AS current_month_kg,
			COALESCE(SUM((extracted_data->>'carbon_footprint_kg')::numeric)
				FILTER (WHERE status = 'completed'
					AND created_at >= date_trunc('month', now()) - interval '1 month'
					AND created_at <  date_trunc('month', now())), 0) AS previous_month_kg,
			COUNT(*) AS audits_count,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_count
		FROM audits WHERE user_id = $1`

	var totalKg, currentKg, previousKg decimal.Decimal
	var auditsCount, completedCount int
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&totalKg, &currentKg, &previousKg, &auditsCount, &completedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("stats audits: %w", err)
	}

	stats := &entity.CarbonStats{
		TotalEmissionsKg: totalKg,
		AuditsCount:      auditsCount,
	}
	if previousKg.IsPositive() {
		stats.MonthlyTrendPct = currentKg.Sub(previousKg).
			Div(previousKg).Mul(decimal.NewFromInt(100)).Round(1)
	}
	if auditsCount > 0 {
		stats.ComplianceScore = completedCount * 100 / auditsCount
	}
	return stats, nil
}

// scanAudit lee una fila de audits deserializando el jsonb de extracted_data.
func scanAudit(row pgx.Row) (*entity.Audit, error) {
	var a entity.Audit
	var extracted []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.FileURL, &extracted, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	if len(extracted) > 0 {
		var be entity.BillExtraction
		if err := json.Unmarshal(extracted, &be); err != nil {
			return nil, fmt.Errorf("deserializar extracted_data: %w", err)
		}
		a.Extracted = &be
	}
	return &a, nil
}
