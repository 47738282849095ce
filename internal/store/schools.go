package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tuckshop/backend/internal/models"
	"github.com/tuckshop/backend/internal/query"
)

type SchoolStore struct {
	db *sql.DB
}

func NewSchoolStore(db *sql.DB) *SchoolStore {
	return &SchoolStore{db: db}
}

func (s *SchoolStore) Create(ctx context.Context, name string) (*models.School, error) {
	school := &models.School{ID: uuid.New(), Name: strings.TrimSpace(name), CreatedAt: time.Now().UTC()}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schools (id, name, created_at)
		VALUES ($1, $2, $3)`, school.ID, school.Name, school.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create school: %w", err)
	}
	return school, nil
}

func (s *SchoolStore) Get(ctx context.Context, id uuid.UUID) (*models.School, error) {
	var school models.School
	err := s.db.QueryRowContext(ctx, `SELECT s.id, s.name, s.created_at FROM schools s WHERE s.id = $1`, id).
		Scan(&school.ID, &school.Name, &school.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get school: %w", err)
	}
	return &school, nil
}

func (s *SchoolStore) List(ctx context.Context, page query.Page) ([]models.School, int, error) {
	total, err := countRows(ctx, s.db, "SELECT COUNT(*) FROM schools s")
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT s.id, s.name, s.created_at FROM schools s ORDER BY "+query.SchoolSort.OrderBy(page)+" LIMIT $1 OFFSET $2",
		page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var school models.School
		if err := rows.Scan(&school.ID, &school.Name, &school.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("list schools: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}
	return schools, total, nil
}
