// Copyright (c) 2026 Campora. All rights reserved.

package faculty

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/database/schema"
	"github.com/campora/campora/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// facultyColumns is the SELECT list, excluding the soft-delete marker.
var facultyColumns = strings.Join([]string{
	schema.RecordsFaculty.ID,
	schema.RecordsFaculty.IdentityID,
	schema.RecordsFaculty.EmployeeNumber,
	schema.RecordsFaculty.FirstName,
	schema.RecordsFaculty.LastName,
	schema.RecordsFaculty.DateOfBirth,
	schema.RecordsFaculty.Gender,
	schema.RecordsFaculty.Phone,
	schema.RecordsFaculty.Address,
	schema.RecordsFaculty.Department,
	schema.RecordsFaculty.Designation,
	schema.RecordsFaculty.JoiningDate,
	schema.RecordsFaculty.CreatedAt,
	schema.RecordsFaculty.UpdatedAt,
}, ", ")

func scanFaculty(row pgx.Row) (*Faculty, error) {
	faculty := &Faculty{}
	err := row.Scan(
		&faculty.ID,
		&faculty.IdentityID,
		&faculty.EmployeeNumber,
		&faculty.FirstName,
		&faculty.LastName,
		&faculty.DateOfBirth,
		&faculty.Gender,
		&faculty.Phone,
		&faculty.Address,
		&faculty.Department,
		&faculty.Designation,
		&faculty.JoiningDate,
		&faculty.CreatedAt,
		&faculty.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return faculty, nil
}

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Faculty, int, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s IS NULL`,
		facultyColumns, schema.RecordsFaculty.Table, schema.RecordsFaculty.DeletedAt,
	)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NULL`,
		schema.RecordsFaculty.Table, schema.RecordsFaculty.DeletedAt,
	)

	args := []any{}
	argPos := 1

	if filter.Query != "" {
		clause := fmt.Sprintf(` AND (%s ILIKE $%d OR %s ILIKE $%d OR %s ILIKE $%d)`,
			schema.RecordsFaculty.EmployeeNumber, argPos,
			schema.RecordsFaculty.FirstName, argPos,
			schema.RecordsFaculty.LastName, argPos,
		)
		query += clause
		countQuery += clause
		args = append(args, "%"+filter.Query+"%")
		argPos++
	}

	if filter.Department != "" {
		clause := fmt.Sprintf(` AND %s = $%d`, schema.RecordsFaculty.Department, argPos)
		query += clause
		countQuery += clause
		args = append(args, filter.Department)
		argPos++
	}

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_faculty_repo_count_failed: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, schema.RecordsFaculty.EmployeeNumber, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_faculty_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var members []*Faculty
	for rows.Next() {
		member, err := scanFaculty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_faculty_repo_list_scan_failed: %w", err)
		}
		members = append(members, member)
	}

	return members, total, rows.Err()
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Faculty, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		facultyColumns, schema.RecordsFaculty.Table, schema.RecordsFaculty.ID, schema.RecordsFaculty.DeletedAt,
	)

	faculty, err := scanFaculty(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Faculty")
		}
		return nil, fmt.Errorf("postgres_faculty_repo_find_by_id_failed: %w", err)
	}

	return faculty, nil
}

func (repository *PostgresRepository) FindByIdentityID(context context.Context, identityID string) (*Faculty, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		facultyColumns, schema.RecordsFaculty.Table, schema.RecordsFaculty.IdentityID, schema.RecordsFaculty.DeletedAt,
	)

	faculty, err := scanFaculty(repository.pool.QueryRow(context, query, identityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Faculty")
		}
		return nil, fmt.Errorf("postgres_faculty_repo_find_by_identity_failed: %w", err)
	}

	return faculty, nil
}

func (repository *PostgresRepository) Create(context context.Context, faculty *Faculty) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		schema.RecordsFaculty.Table, facultyColumns,
	)

	now := time.Now()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = now
	if faculty.JoiningDate.IsZero() {
		faculty.JoiningDate = now
	}

	_, err := repository.pool.Exec(context, query,
		faculty.ID,
		faculty.IdentityID,
		faculty.EmployeeNumber,
		faculty.FirstName,
		faculty.LastName,
		faculty.DateOfBirth,
		faculty.Gender,
		faculty.Phone,
		faculty.Address,
		faculty.Department,
		faculty.Designation,
		faculty.JoiningDate,
		faculty.CreatedAt,
		faculty.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Employee number is already in use")
		}
		return fmt.Errorf("postgres_faculty_repo_create_failed: %w", err)
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, faculty *Faculty) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10
		WHERE %s = $1 AND %s IS NULL`,
		schema.RecordsFaculty.Table,
		schema.RecordsFaculty.FirstName,
		schema.RecordsFaculty.LastName,
		schema.RecordsFaculty.DateOfBirth,
		schema.RecordsFaculty.Gender,
		schema.RecordsFaculty.Phone,
		schema.RecordsFaculty.Address,
		schema.RecordsFaculty.Department,
		schema.RecordsFaculty.Designation,
		schema.RecordsFaculty.UpdatedAt,
		schema.RecordsFaculty.ID,
		schema.RecordsFaculty.DeletedAt,
	)

	faculty.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		faculty.ID,
		faculty.FirstName,
		faculty.LastName,
		faculty.DateOfBirth,
		faculty.Gender,
		faculty.Phone,
		faculty.Address,
		faculty.Department,
		faculty.Designation,
		faculty.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_faculty_repo_update_failed: %w", err)
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1 AND %s IS NULL`,
		schema.RecordsFaculty.Table,
		schema.RecordsFaculty.DeletedAt,
		schema.RecordsFaculty.ID,
		schema.RecordsFaculty.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_faculty_repo_soft_delete_failed: %w", err)
	}
	return nil
}
