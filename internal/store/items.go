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

const itemColumns = `i.id, i.name, i.price, i.description, i.image_url, i.category, i.school_id, i.created_at, i.updated_at`

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item        models.Item
		description sql.NullString
		imageURL    sql.NullString
		category    sql.NullString
		schoolID    uuid.NullUUID
	)
	err := row.Scan(&item.ID, &item.Name, &item.Price, &description, &imageURL, &category, &schoolID,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.ImageURL = imageURL.String
	item.Category = nullString(category)
	item.SchoolID = nullUUID(schoolID)
	return &item, nil
}

func (s *ItemStore) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items i WHERE i.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	item.ID = uuid.New()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, price, description, image_url, category, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		item.ID, item.Name, item.Price, item.Description, item.ImageURL, item.Category, item.SchoolID, now)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *ItemStore) Update(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		set("name", strings.TrimSpace(*patch.Name))
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.SchoolID != nil {
		set("school_id", *patch.SchoolID)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE items SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}

// Delete removes the item. Past purchases keep their captured name and price.
func (s *ItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ItemStore) List(ctx context.Context, filter models.ItemFilter, page query.Page) ([]models.Item, int, error) {
	var w where
	if filter.Search != "" {
		w.add("i.name ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		w.add("LOWER(i.category) = LOWER($%d)", filter.Category)
	}
	if filter.SchoolID != nil {
		w.add("i.school_id = $%d", *filter.SchoolID)
	}

	total, err := countRows(ctx, s.db, "SELECT COUNT(*) FROM items i"+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM items i%s ORDER BY %s LIMIT $%d OFFSET $%d",
		itemColumns, w.sql(), query.ItemSort.OrderBy(page), w.next(), w.next()+1)
	rows, err := s.db.QueryContext(ctx, q, append(w.args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list items: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}
