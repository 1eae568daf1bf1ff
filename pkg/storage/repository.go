package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

const selectColumns = "id, type, label, value, sort, description, created_at, updated_at"

type dictionaryRow struct {
	ID          int64     `db:"id"`
	Type        string    `db:"type"`
	Label       string    `db:"label"`
	Value       string    `db:"value"`
	Sort        int       `db:"sort"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r dictionaryRow) item() dictionary.Item {
	return dictionary.Item{
		ID:          r.ID,
		Type:        r.Type,
		Label:       r.Label,
		Value:       r.Value,
		Sort:        r.Sort,
		Description: r.Description,
		CreatedAt:   dictionary.FormatTimestamp(r.CreatedAt),
		UpdatedAt:   dictionary.FormatTimestamp(r.UpdatedAt),
	}
}

// DictionaryRepository implements dictionary.Repository on sqlx.
type DictionaryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ dictionary.Repository = (*DictionaryRepository)(nil)

// NewDictionaryRepository creates a repository.
func NewDictionaryRepository(db *sqlx.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// List returns one filtered page ordered by type, sort, id and the total
// number of matches.
func (r *DictionaryRepository) List(ctx context.Context, query dictionary.ListQuery) (dictionary.ListResult, error) {
	query = dictionary.NormalizeListQuery(query)
	where, args := listFilter(query)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM dictionaries"+where, args...); err != nil {
		return dictionary.ListResult{}, fmt.Errorf("count dictionaries: %w", err)
	}

	var rows []dictionaryRow
	pageArgs := append(append([]any{}, args...), query.PageSize, (query.Page-1)*query.PageSize)
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT "+selectColumns+" FROM dictionaries"+where+" ORDER BY type, sort, id LIMIT ? OFFSET ?",
		pageArgs...); err != nil {
		return dictionary.ListResult{}, fmt.Errorf("list dictionaries: %w", err)
	}

	items := make([]dictionary.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return dictionary.ListResult{Dictionaries: items, Total: total}, nil
}

// Create inserts a new item after checking (type, value) uniqueness.
func (r *DictionaryRepository) Create(ctx context.Context, draft dictionary.Draft) (dictionary.Item, error) {
	now := r.now()
	row := dictionaryRow{
		Type:        draft.Type,
		Label:       draft.Label,
		Value:       draft.Value,
		Sort:        draft.Sort,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureUnique(ctx, tx, draft.Type, draft.Value, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO dictionaries (type, label, value, sort, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			row.Type, row.Label, row.Value, row.Sort, row.Description, row.CreatedAt, row.UpdatedAt)
		if err != nil {
			return mapWriteError("insert dictionary", err)
		}
		if row.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read inserted id: %w", err)
		}
		return nil
	})
	if err != nil {
		return dictionary.Item{}, err
	}
	return row.item(), nil
}

// Update replaces the editable fields of an existing item.
func (r *DictionaryRepository) Update(ctx context.Context, draft dictionary.Draft) (dictionary.Item, error) {
	var row dictionaryRow
	err := RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &row, "SELECT "+selectColumns+" FROM dictionaries WHERE id = ?", draft.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return dictionary.ErrNotFound
			}
			return fmt.Errorf("load dictionary %d: %w", draft.ID, err)
		}
		if err := ensureUnique(ctx, tx, draft.Type, draft.Value, draft.ID); err != nil {
			return err
		}
		row.Type = draft.Type
		row.Label = draft.Label
		row.Value = draft.Value
		row.Sort = draft.Sort
		row.Description = draft.Description
		row.UpdatedAt = r.now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE dictionaries SET type = ?, label = ?, value = ?, sort = ?, description = ?, updated_at = ? WHERE id = ?",
			row.Type, row.Label, row.Value, row.Sort, row.Description, row.UpdatedAt, row.ID); err != nil {
			return mapWriteError("update dictionary", err)
		}
		return nil
	})
	if err != nil {
		return dictionary.Item{}, err
	}
	return row.item(), nil
}

// Delete removes an item by id.
func (r *DictionaryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM dictionaries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete dictionary %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dictionary %d: %w", id, err)
	}
	if affected == 0 {
		return dictionary.ErrNotFound
	}
	return nil
}

func ensureUnique(ctx context.Context, tx *sqlx.Tx, typ, value string, exceptID int64) error {
	var count int
	if err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM dictionaries WHERE type = ? AND value = ? AND id <> ?",
		typ, value, exceptID); err != nil {
		return fmt.Errorf("check duplicate dictionary: %w", err)
	}
	if count > 0 {
		return dictionary.ErrDuplicateValue
	}
	return nil
}

func listFilter(query dictionary.ListQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if query.Type != "" {
		clauses = append(clauses, "type LIKE ? ESCAPE '!'")
		args = append(args, "%"+escapeLike(query.Type)+"%")
	}
	if query.Label != "" {
		clauses = append(clauses, "label LIKE ? ESCAPE '!'")
		args = append(args, "%"+escapeLike(query.Label)+"%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// mapWriteError turns unique constraint violations raised by a concurrent
// writer into ErrDuplicateValue.
func mapWriteError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return dictionary.ErrDuplicateValue
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return dictionary.ErrDuplicateValue
	}
	return fmt.Errorf("%s: %w", op, err)
}
