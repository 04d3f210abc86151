package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"relytailors-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, category string) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, category, price, image,
	customization_options, measurement_fields, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p       Product
		options []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Image,
		&options, pq.Array(&p.MeasurementFields), &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &p.CustomizationOptions); err != nil {
			return nil, fmt.Errorf("decode customization options of %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, category string) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) FindByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByIDs loads the given products keyed by id. Unknown ids are simply
// absent from the map.
func (r *repository) FindByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	out := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}

	return out, rows.Err()
}
