package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Huella-api/internal/domain"
	"github.com/jhoicas/Huella-api/internal/domain/entity"
	"github.com/jhoicas/Huella-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementación del puerto ProfileRepository sobre PostgreSQL.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepository construye el adaptador de persistencia para perfiles.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetByID obtiene un perfil por ID. Devuelve (nil, nil) si no existe la fila:
// "sin fila" y "consulta fallida" son resultados distintos y los callers del
// resolver dependen de esa distinción.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	query := `
		SELECT id, company_name, is_admin, status, created_at
		FROM profiles WHERE id = $1`
	var p entity.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyName, &p.IsAdmin, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}
	return &p, nil
}

// Create persiste un nuevo perfil (signup self-service; el trigger de
// aprovisionamiento externo usa la misma tabla).
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, company_name, is_admin, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.CompanyName, p.IsAdmin, p.Status, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estado de la cuenta (aprobación/suspensión del operador).
func (r *ProfileRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// UpdateCompanyName corrige el nombre de la empresa.
func (r *ProfileRepo) UpdateCompanyName(ctx context.Context, id, companyName string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET company_name = $2 WHERE id = $1`, id, companyName)
	if err != nil {
		return fmt.Errorf("update profile company_name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// ListByCreatedAt lista perfiles ordenados por fecha de creación descendente
// (listado del operador).
func (r *ProfileRepo) ListByCreatedAt(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	query := `
		SELECT id, company_name, is_admin, status, created_at
		FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		var p entity.Profile
		if err := rows.Scan(&p.ID, &p.CompanyName, &p.IsAdmin, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
