package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Elmamis69/jatrack/internal/domain"
)

// PostgresApplicationRepo implements ApplicationRepository over pgx.
type PostgresApplicationRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresApplicationRepo creates an application repository with a
// per-operation timeout applied to every store round-trip.
func NewPostgresApplicationRepo(pool *pgxpool.Pool, timeout time.Duration) *PostgresApplicationRepo {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &PostgresApplicationRepo{db: pool, timeout: timeout}
}

const insertApplicationSQL = `INSERT INTO applications (id, user_id, company, role_title, status, applied_date, contact_email, job_url, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + selectApplicationColumns

func (r *PostgresApplicationRepo) Create(ctx context.Context, app domain.Application) (domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, insertApplicationSQL,
		app.ID,
		app.UserID,
		app.Company,
		app.RoleTitle,
		string(app.Status),
		nullIfZero(app.AppliedDate),
		nullIfEmpty(app.ContactEmail),
		nullIfEmpty(app.JobURL),
		nullIfEmpty(app.Notes),
	)
	created, err := scanApplication(row)
	if err != nil {
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}
	return created, nil
}

func (r *PostgresApplicationRepo) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx,
		`SELECT `+selectApplicationColumns+` FROM applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// Update replaces every mutable field. The id and owner never change;
// ownership is part of the WHERE clause, so a foreign record updates
// zero rows and reports not found. Concurrent updates to the same
// record are last-write-wins.
const updateApplicationSQL = `UPDATE applications
SET company = $3, role_title = $4, status = $5, applied_date = $6, contact_email = $7, job_url = $8, notes = $9, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + selectApplicationColumns

func (r *PostgresApplicationRepo) Update(ctx context.Context, app domain.Application) (domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRow(ctx, updateApplicationSQL,
		app.ID,
		app.UserID,
		app.Company,
		app.RoleTitle,
		string(app.Status),
		nullIfZero(app.AppliedDate),
		nullIfEmpty(app.ContactEmail),
		nullIfEmpty(app.JobURL),
		nullIfEmpty(app.Notes),
	)
	updated, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("update application: %w", err)
	}
	return updated, nil
}

func (r *PostgresApplicationRepo) Delete(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search runs the composed owner-scoped query plus its count query and
// wraps the slice in page metadata. Ownership lives inside the SQL;
// rows owned by other users are never materialized.
func (r *PostgresApplicationRepo) Search(ctx context.Context, ownerID int64, filter domain.SearchFilter, page domain.PageRequest) (domain.Page, error) {
	query, countQuery, args, err := buildSearchQuery(ownerID, filter, page)
	if err != nil {
		return domain.Page{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var total int64
	predicateArgs := args[:len(args)-2]
	if err := r.db.QueryRow(ctx, countQuery, predicateArgs...).Scan(&total); err != nil {
		return domain.Page{}, fmt.Errorf("count applications: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("search applications: %w", err)
	}
	defer rows.Close()

	var content []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return domain.Page{}, fmt.Errorf("scan application: %w", err)
		}
		content = append(content, app)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("iterate applications: %w", err)
	}

	return domain.NewPage(content, page, total), nil
}

func scanApplication(row pgx.Row) (domain.Application, error) {
	var (
		app          domain.Application
		status       string
		appliedDate  sql.NullTime
		contactEmail sql.NullString
		jobURL       sql.NullString
		notes        sql.NullString
	)
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Company,
		&app.RoleTitle,
		&status,
		&appliedDate,
		&contactEmail,
		&jobURL,
		&notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return domain.Application{}, err
	}
	app.Status = domain.Status(status)
	app.AppliedDate = domain.Date{Time: appliedDate.Time}
	app.ContactEmail = contactEmail.String
	app.JobURL = jobURL.String
	app.Notes = notes.String
	return app, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(d domain.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time
}
