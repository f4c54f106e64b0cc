// Copyright (c) 2026 Campora. All rights reserved.

package student

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

// studentColumns is the SELECT list, excluding the soft-delete marker.
var studentColumns = strings.Join([]string{
	schema.RecordsStudent.ID,
	schema.RecordsStudent.IdentityID,
	schema.RecordsStudent.AdmissionNumber,
	schema.RecordsStudent.FirstName,
	schema.RecordsStudent.LastName,
	schema.RecordsStudent.DateOfBirth,
	schema.RecordsStudent.Gender,
	schema.RecordsStudent.Phone,
	schema.RecordsStudent.Address,
	schema.RecordsStudent.GuardianName,
	schema.RecordsStudent.GuardianPhone,
	schema.RecordsStudent.AdmissionDate,
	schema.RecordsStudent.Grade,
	schema.RecordsStudent.CreatedAt,
	schema.RecordsStudent.UpdatedAt,
}, ", ")

func scanStudent(row pgx.Row) (*Student, error) {
	student := &Student{}
	err := row.Scan(
		&student.ID,
		&student.IdentityID,
		&student.AdmissionNumber,
		&student.FirstName,
		&student.LastName,
		&student.DateOfBirth,
		&student.Gender,
		&student.Phone,
		&student.Address,
		&student.GuardianName,
		&student.GuardianPhone,
		&student.AdmissionDate,
		&student.Grade,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Student, int, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s IS NULL`,
		studentColumns, schema.RecordsStudent.Table, schema.RecordsStudent.DeletedAt,
	)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NULL`,
		schema.RecordsStudent.Table, schema.RecordsStudent.DeletedAt,
	)

	args := []any{}
	argPos := 1

	if filter.Query != "" {
		clause := fmt.Sprintf(` AND (%s ILIKE $%d OR %s ILIKE $%d OR %s ILIKE $%d)`,
			schema.RecordsStudent.AdmissionNumber, argPos,
			schema.RecordsStudent.FirstName, argPos,
			schema.RecordsStudent.LastName, argPos,
		)
		query += clause
		countQuery += clause
		args = append(args, "%"+filter.Query+"%")
		argPos++
	}

	if filter.Grade != "" {
		clause := fmt.Sprintf(` AND %s = $%d`, schema.RecordsStudent.Grade, argPos)
		query += clause
		countQuery += clause
		args = append(args, filter.Grade)
		argPos++
	}

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_student_repo_count_failed: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`, schema.RecordsStudent.AdmissionNumber, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_student_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var students []*Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_student_repo_list_scan_failed: %w", err)
		}
		students = append(students, student)
	}

	return students, total, rows.Err()
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Student, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		studentColumns, schema.RecordsStudent.Table, schema.RecordsStudent.ID, schema.RecordsStudent.DeletedAt,
	)

	student, err := scanStudent(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Student")
		}
		return nil, fmt.Errorf("postgres_student_repo_find_by_id_failed: %w", err)
	}

	return student, nil
}

func (repository *PostgresRepository) FindByIdentityID(context context.Context, identityID string) (*Student, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		studentColumns, schema.RecordsStudent.Table, schema.RecordsStudent.IdentityID, schema.RecordsStudent.DeletedAt,
	)

	student, err := scanStudent(repository.pool.QueryRow(context, query, identityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Student")
		}
		return nil, fmt.Errorf("postgres_student_repo_find_by_identity_failed: %w", err)
	}

	return student, nil
}

func (repository *PostgresRepository) Create(context context.Context, student *Student) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		schema.RecordsStudent.Table, studentColumns,
	)

	now := time.Now()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.AdmissionDate.IsZero() {
		student.AdmissionDate = now
	}

	_, err := repository.pool.Exec(context, query,
		student.ID,
		student.IdentityID,
		student.AdmissionNumber,
		student.FirstName,
		student.LastName,
		student.DateOfBirth,
		student.Gender,
		student.Phone,
		student.Address,
		student.GuardianName,
		student.GuardianPhone,
		student.AdmissionDate,
		student.Grade,
		student.CreatedAt,
		student.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Admission number is already in use")
		}
		return fmt.Errorf("postgres_student_repo_create_failed: %w", err)
	}

	return nil
}

func (repository *PostgresRepository) Update(context context.Context, student *Student) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10, %s = $11
		WHERE %s = $1 AND %s IS NULL`,
		schema.RecordsStudent.Table,
		schema.RecordsStudent.FirstName,
		schema.RecordsStudent.LastName,
		schema.RecordsStudent.DateOfBirth,
		schema.RecordsStudent.Gender,
		schema.RecordsStudent.Phone,
		schema.RecordsStudent.Address,
		schema.RecordsStudent.GuardianName,
		schema.RecordsStudent.GuardianPhone,
		schema.RecordsStudent.Grade,
		schema.RecordsStudent.UpdatedAt,
		schema.RecordsStudent.ID,
		schema.RecordsStudent.DeletedAt,
	)

	student.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		student.ID,
		student.FirstName,
		student.LastName,
		student.DateOfBirth,
		student.Gender,
		student.Phone,
		student.Address,
		student.GuardianName,
		student.GuardianPhone,
		student.Grade,
		student.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_student_repo_update_failed: %w", err)
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1 AND %s IS NULL`,
		schema.RecordsStudent.Table,
		schema.RecordsStudent.DeletedAt,
		schema.RecordsStudent.ID,
		schema.RecordsStudent.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_student_repo_soft_delete_failed: %w", err)
	}
	return nil
}
