// AngelaMos | 2026
// repository.go

package agecategory

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/carterperez-dev/membership/internal/core"
)

type Category struct {
	Age       int       `db:"age"`
	Count     int       `db:"count"`
	Cap       int       `db:"cap"`
	Unlocked  bool      `db:"unlocked"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Increment(ctx context.Context, age, defaultCap int) (*Category, error)
}

var columns = []string{"age", "count", "cap", "unlocked", "created_at", "updated_at"}

type repository struct {
	db core.DBTX
	qb sq.StatementBuilderType
}

func NewRepository(db core.DBTX) Repository {
	return &repository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	query, args, err := r.qb.
		Select(columns...).
		From("age_categories").
		OrderBy("age ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	categories := []Category{}
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list age categories: %w", err)
	}

	return categories, nil
}

// Increment upserts the row and adds one in a single statement. unlocked only
// ever moves from false to true.
func (r *repository) Increment(
	ctx context.Context,
	age, defaultCap int,
) (*Category, error) {
	query, args, err := r.qb.
		Insert("age_categories").
		Columns("age", "count", "cap", "unlocked").
		Values(age, 1, defaultCap, defaultCap <= 1).
		Suffix(`ON CONFLICT (age) DO UPDATE SET
			count = age_categories.count + 1,
			unlocked = age_categories.unlocked
				OR age_categories.count + 1 >= age_categories.cap,
			updated_at = NOW()
			RETURNING age, count, cap, unlocked, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build increment query: %w", err)
	}

	var category Category
	if err := r.db.GetContext(ctx, &category, query, args...); err != nil {
		return nil, fmt.Errorf("increment age category: %w", err)
	}

	return &category, nil
}
