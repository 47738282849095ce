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

const accountColumns = `a.id, a.name, a.role, a.email, a.student_id, a.class, a.school_id, a.parent_id,
	a.balance, a.version, a.created_at, a.updated_at`

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(row rowScanner, extra ...any) (*models.Account, error) {
	var (
		a         models.Account
		email     sql.NullString
		studentID sql.NullString
		class     sql.NullString
		schoolID  uuid.NullUUID
		parentID  uuid.NullUUID
	)
	dest := []any{&a.ID, &a.Name, &a.Role, &email, &studentID, &class, &schoolID, &parentID,
		&a.Balance, &a.Version, &a.CreatedAt, &a.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Email = nullString(email)
	a.StudentID = nullString(studentID)
	a.Class = nullString(class)
	a.SchoolID = nullUUID(schoolID)
	a.ParentID = nullUUID(parentID)
	return &a, nil
}

// FindByIdentifier matches an email or student id case-insensitively and
// includes the password hash for credential checks.
func (s *AccountStore) FindByIdentifier(ctx context.Context, kind models.IdentifierKind, value string) (*models.Account, error) {
	column := "a.student_id"
	if kind == models.IdentifierEmail {
		column = "a.email"
	}

	var hash string
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+`, a.password_hash
		FROM accounts a
		WHERE LOWER(`+column+`) = LOWER($1)`, strings.TrimSpace(value))
	account, err := scanAccount(row, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by identifier: %w", err)
	}
	account.PasswordHash = hash
	return account, nil
}

// Get returns the account with its derived child list.
func (s *AccountStore) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+`
		FROM accounts a
		WHERE a.id = $1`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if account.Role == models.RoleParent {
		if account.Children, err = s.Children(ctx, id); err != nil {
			return nil, err
		}
	}
	return account, nil
}

func (s *AccountStore) Children(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM accounts
		WHERE parent_id = $1
		ORDER BY name`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list children: %w", err)
		}
		children = append(children, id)
	}
	return children, rows.Err()
}

// identifierTaken reports whether email or studentID is used by an account
// other than exclude.
func (s *AccountStore) identifierTaken(ctx context.Context, email, studentID *string, exclude *uuid.UUID) (bool, error) {
	if email == nil && studentID == nil {
		return false, nil
	}
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE ((LOWER(email) = LOWER($1)) OR (LOWER(student_id) = LOWER($2)))
			AND ($3::uuid IS NULL OR id <> $3)
		)`, email, studentID, exclude).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check identifier: %w", err)
	}
	return taken, nil
}

func (s *AccountStore) Create(ctx context.Context, spec models.AccountSpec, passwordHash string) (*models.Account, error) {
	f := spec.Fields()

	taken, err := s.identifierTaken(ctx, f.Email, f.StudentID, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:        uuid.New(),
		Name:      f.Name,
		Role:      f.Role,
		Email:     f.Email,
		StudentID: f.StudentID,
		Class:     f.Class,
		SchoolID:  f.SchoolID,
		ParentID:  f.ParentID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, role, email, student_id, class, school_id, parent_id, balance, version, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 1, $9, $10, $10)`,
		account.ID, account.Name, account.Role, account.Email, account.StudentID, account.Class,
		account.SchoolID, account.ParentID, passwordHash, now)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// Update applies the non-nil fields of patch. Balance and version are not
// reachable from here; only the engine writes them.
func (s *AccountStore) Update(ctx context.Context, id uuid.UUID, patch models.AccountPatch) (*models.Account, error) {
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	if patch.Email != nil || patch.StudentID != nil {
		taken, err := s.identifierTaken(ctx, patch.Email, patch.StudentID, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicate
		}
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
	if patch.Email != nil {
		set("email", strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.StudentID != nil {
		set("student_id", strings.TrimSpace(*patch.StudentID))
	}
	if patch.Class != nil {
		set("class", *patch.Class)
	}
	if patch.SchoolID != nil {
		set("school_id", *patch.SchoolID)
	}
	if patch.ParentID != nil {
		set("parent_id", *patch.ParentID)
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}

// Delete removes the account. Children of a deleted parent are unlinked in
// the same transaction; ledger rows are kept.
func (s *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET parent_id = NULL, updated_at = $2
		WHERE parent_id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("unlink children: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *AccountStore) List(ctx context.Context, filter models.AccountFilter, page query.Page) ([]models.Account, int, error) {
	var w where
	if filter.Role != "" {
		w.add("a.role = $%d", filter.Role)
	}
	if filter.Search != "" {
		w.add("a.name ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.SchoolID != nil {
		w.add("a.school_id = $%d", *filter.SchoolID)
	}

	total, err := countRows(ctx, s.db, "SELECT COUNT(*) FROM accounts a"+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM accounts a%s ORDER BY %s LIMIT $%d OFFSET $%d",
		accountColumns, w.sql(), query.AccountSort.OrderBy(page), w.next(), w.next()+1)
	rows, err := s.db.QueryContext(ctx, q, append(w.args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list accounts: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	if err := s.attachChildren(ctx, accounts); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// attachChildren fills Children for every parent in accounts with one query.
func (s *AccountStore) attachChildren(ctx context.Context, accounts []models.Account) error {
	index := make(map[uuid.UUID]int)
	var parents []uuid.UUID
	for i, a := range accounts {
		if a.Role == models.RoleParent {
			index[a.ID] = i
			parents = append(parents, a.ID)
		}
	}
	if len(parents) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT parent_id, id FROM accounts
		WHERE parent_id = ANY($1)
		ORDER BY name`, uuidStrings(parents))
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, childID uuid.UUID
		if err := rows.Scan(&parentID, &childID); err != nil {
			return fmt.Errorf("list children: %w", err)
		}
		i := index[parentID]
		accounts[i].Children = append(accounts[i].Children, childID)
	}
	return rows.Err()
}

// HasRole reports whether any account has role.
func (s *AccountStore) HasRole(ctx context.Context, role models.Role) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE role = $1)`, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}
