package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) database.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (order_uuid, user_id, ticket_id, payment_id, payment_method, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		order.UUID,
		order.UserID,
		order.TicketID,
		order.PaymentID,
		order.PaymentMethod,
		order.TotalAmount,
		order.Status,
		order.CreatedAt,
	).Scan(&order.ID)
	if isUniqueViolation(err, "orders_ticket_id_key") {
		return entity.ErrOrderExists
	}
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

const orderColumns = `id, order_uuid, user_id, ticket_id, payment_id, payment_method, total_amount, status, created_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o        entity.Order
		ticketID sql.NullInt64
	)
	err := row.Scan(
		&o.ID,
		&o.UUID,
		&o.UserID,
		&ticketID,
		&o.PaymentID,
		&o.PaymentMethod,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ticketID.Valid {
		o.TicketID = &ticketID.Int64
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetByTicketID(ctx context.Context, ticketID int64) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ticket_id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, ticketID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by ticket: %w", err)
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
