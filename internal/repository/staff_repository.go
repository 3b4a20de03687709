package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
	GetActiveByName(ctx context.Context, name string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.StaffMember, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Active *bool
	Search string
	Limit  int
	Offset int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, name, phone_number, email, active, created_at, modified_at`

func scanStaff(row pgx.Row) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.PhoneNumber,
		&staff.Email,
		&staff.Active,
		&staff.CreatedAt,
		&staff.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff (name, phone_number, email, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, modified_at`

	err := r.pool.QueryRow(ctx, query,
		staff.Name,
		staff.PhoneNumber,
		staff.Email,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.ModifiedAt)
	return mapWriteError(err)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff
        SET name=$1, phone_number=$2, email=$3, active=$4, modified_at=NOW()
        WHERE id=$5
        RETURNING modified_at`

	err := r.pool.QueryRow(ctx, query,
		staff.Name,
		staff.PhoneNumber,
		staff.Email,
		staff.Active,
		staff.ID,
	).Scan(&staff.ModifiedAt)
	return mapWriteError(err)
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	return scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id=$1`, id))
}

func (r *staffRepository) GetActiveByName(ctx context.Context, name string) (*domain.StaffMember, error) {
	const query = `SELECT ` + staffColumns + ` FROM staff WHERE name=$1 AND active=TRUE ORDER BY id DESC LIMIT 1`
	return scanStaff(r.pool.QueryRow(ctx, query, name))
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff`
	args := []any{}
	clauses := []string{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active=$%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR phone_number ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY name ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StaffMember{}
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.StaffMember, error) {
	const query = `
        UPDATE staff SET active=$1, modified_at=NOW()
        WHERE id=$2
        RETURNING ` + staffColumns

	return scanStaff(r.pool.QueryRow(ctx, query, active, id))
}
