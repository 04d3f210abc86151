package order

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

const orderNumberConstraint = "orders_order_number_key"

type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByOwner(ctx context.Context, userID uint) ([]*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectOrders = `
	SELECT o.id, o.order_number, o.user_id, u.name, u.email,
		o.order_items, o.shipping_address, o.total_price,
		o.order_status, o.payment_status, o.paid_at, o.delivered_at,
		o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o           Order
		name, email sql.NullString
		items, addr []byte
		paidAt      sql.NullTime
		deliveredAt sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Owner.ID, &name, &email,
		&items, &addr, &o.TotalPrice,
		&o.OrderStatus, &o.PaymentStatus, &paidAt, &deliveredAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Owner.Name = name.String
	o.Owner.Email = email.String
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address of %s: %w", o.ID, err)
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.ID),
	)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, order_items, shipping_address,
			total_price, order_status, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.OrderNumber, o.Owner.ID, items, addr,
		o.TotalPrice, o.OrderStatus, o.PaymentStatus, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" &&
			pqErr.Constraint == orderNumberConstraint {
			log.Warn("order number collision", zap.String("order_number", o.OrderNumber))
			return errOrderNumberTaken
		}
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	log.Info("order inserted")
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrders+` WHERE o.id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order",
			zap.String("layer", "repository"),
			zap.String("method", "FindByID"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

func (r *repository) FindByOwner(ctx context.Context, userID uint) ([]*Order, error) {
	return r.list(ctx, "FindByOwner",
		selectOrders+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *repository) FindAll(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, "FindAll", selectOrders+` ORDER BY o.created_at DESC`)
}

func (r *repository) list(ctx context.Context, method, query string, args ...any) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// UpdateStatus persists the mutable lifecycle fields of o.
func (r *repository) UpdateStatus(ctx context.Context, o *Order) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET order_status = $2, payment_status = $3, paid_at = $4,
			delivered_at = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, o.OrderStatus, o.PaymentStatus, o.PaidAt, o.DeliveredAt, o.UpdatedAt,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.String("method", "UpdateStatus"),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
