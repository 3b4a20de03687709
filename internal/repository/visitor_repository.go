package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// VisitorRepository handles persistence for visitor check-ins.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *domain.Visitor) error
	Update(ctx context.Context, visitor *domain.Visitor) error
	GetByID(ctx context.Context, id int64) (*domain.Visitor, error)
	GetLatestByPhone(ctx context.Context, phone string) (*domain.Visitor, error)
	List(ctx context.Context, filter VisitorFilter) ([]domain.Visitor, error)
	CheckOut(ctx context.Context, id int64, at time.Time) (*domain.Visitor, error)
	Delete(ctx context.Context, id int64) error
	// Stats counts visitors created in [from, to]. RecentVisitors lists the
	// newest still-active visitors regardless of the range.
	Stats(ctx context.Context, from, to *time.Time, recent int) (*domain.VisitorStats, error)
}

// VisitorFilter narrows visitor listings. Zero values disable a clause.
type VisitorFilter struct {
	From              *time.Time
	To                *time.Time
	Profile           *domain.VisitorProfile
	StaffID           *int64
	Search            string
	IncludeCheckedOut *bool
	Limit             int
	Offset            int
}

type visitorRepository struct {
	pool *pgxpool.Pool
}

// NewVisitorRepository returns a Postgres-backed implementation.
func NewVisitorRepository(pool *pgxpool.Pool) VisitorRepository {
	return &visitorRepository{pool: pool}
}

const visitorSelect = `
    SELECT v.id, v.visitor_name, v.phone_number, v.visitor_profile, v.visitor_profile_other,
           v.staff_id, s.name, s.phone_number, v.checked_out_at, v.created_at, v.modified_at
    FROM visitors v
    LEFT JOIN staff s ON s.id = v.staff_id`

func scanVisitor(row pgx.Row) (*domain.Visitor, error) {
	var visitor domain.Visitor
	if err := row.Scan(
		&visitor.ID,
		&visitor.VisitorName,
		&visitor.PhoneNumber,
		&visitor.VisitorProfile,
		&visitor.VisitorProfileOther,
		&visitor.StaffID,
		&visitor.StaffName,
		&visitor.StaffPhone,
		&visitor.CheckedOutAt,
		&visitor.CreatedAt,
		&visitor.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *visitorRepository) Create(ctx context.Context, visitor *domain.Visitor) error {
	const query = `
        INSERT INTO visitors (visitor_name, phone_number, visitor_profile, visitor_profile_other, staff_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`

	if err := r.pool.QueryRow(ctx, query,
		visitor.VisitorName,
		visitor.PhoneNumber,
		visitor.VisitorProfile,
		visitor.VisitorProfileOther,
		visitor.StaffID,
	).Scan(&visitor.ID); err != nil {
		return mapWriteError(err)
	}
	return r.reload(ctx, visitor)
}

func (r *visitorRepository) Update(ctx context.Context, visitor *domain.Visitor) error {
	const query = `
        UPDATE visitors
        SET visitor_name=$1, phone_number=$2, visitor_profile=$3, visitor_profile_other=$4,
            staff_id=$5, checked_out_at=$6, modified_at=NOW()
        WHERE id=$7`

	tag, err := r.pool.Exec(ctx, query,
		visitor.VisitorName,
		visitor.PhoneNumber,
		visitor.VisitorProfile,
		visitor.VisitorProfileOther,
		visitor.StaffID,
		visitor.CheckedOutAt,
		visitor.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return r.reload(ctx, visitor)
}

// reload refreshes joined host fields and timestamps after a write.
func (r *visitorRepository) reload(ctx context.Context, visitor *domain.Visitor) error {
	fresh, err := r.GetByID(ctx, visitor.ID)
	if err != nil {
		return err
	}
	*visitor = *fresh
	return nil
}

func (r *visitorRepository) GetByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	return scanVisitor(r.pool.QueryRow(ctx, visitorSelect+` WHERE v.id=$1`, id))
}

func (r *visitorRepository) GetLatestByPhone(ctx context.Context, phone string) (*domain.Visitor, error) {
	return scanVisitor(r.pool.QueryRow(ctx, visitorSelect+` WHERE v.phone_number=$1 ORDER BY v.id DESC LIMIT 1`, phone))
}

func (r *visitorRepository) List(ctx context.Context, filter VisitorFilter) ([]domain.Visitor, error) {
	query := visitorSelect
	args := []any{}
	clauses := []string{}

	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("v.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("v.created_at <= $%d", len(args)))
	}
	if filter.Profile != nil {
		args = append(args, *filter.Profile)
		clauses = append(clauses, fmt.Sprintf("v.visitor_profile = $%d", len(args)))
	}
	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		clauses = append(clauses, fmt.Sprintf("v.staff_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(v.visitor_name ILIKE $%d OR v.phone_number ILIKE $%d OR s.name ILIKE $%d)", n, n, n))
	}
	if filter.IncludeCheckedOut != nil && !*filter.IncludeCheckedOut {
		clauses = append(clauses, "v.checked_out_at IS NULL")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY v.id DESC"
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

	result := []domain.Visitor{}
	for rows.Next() {
		visitor, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *visitor)
	}
	return result, rows.Err()
}

func (r *visitorRepository) CheckOut(ctx context.Context, id int64, at time.Time) (*domain.Visitor, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE visitors SET checked_out_at=$1, modified_at=NOW() WHERE id=$2`, at, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *visitorRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM visitors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitorRepository) Stats(ctx context.Context, from, to *time.Time, recent int) (*domain.VisitorStats, error) {
	args := []any{}
	clauses := []string{}
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("v.created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		clauses = append(clauses, fmt.Sprintf("v.created_at <= $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	stats := &domain.VisitorStats{VisitorsByProfile: []domain.VisitorProfileCount{}}
	countQuery := `
        SELECT COUNT(*), COUNT(v.checked_out_at)
        FROM visitors v` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&stats.TotalVisitors, &stats.CheckedOutCount); err != nil {
		return nil, err
	}
	stats.ActiveVisitors = stats.TotalVisitors - stats.CheckedOutCount

	rows, err := r.pool.Query(ctx, `
        SELECT v.visitor_profile, COUNT(*)
        FROM visitors v`+where+`
        GROUP BY v.visitor_profile
        ORDER BY v.visitor_profile`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry domain.VisitorProfileCount
		if err := rows.Scan(&entry.VisitorProfile, &entry.Count); err != nil {
			return nil, err
		}
		stats.VisitorsByProfile = append(stats.VisitorsByProfile, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	activeOnly := false
	recentList, err := r.List(ctx, VisitorFilter{IncludeCheckedOut: &activeOnly, Limit: recent})
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recentList
	return stats, nil
}
