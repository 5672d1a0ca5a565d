package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mariapr27/my-store-app/internal/domain"
)

const orderColumns = `id, order_number, date, customer_full_name, customer_cedula,
	customer_email, customer_phone, customer_address, fecha_pago, comprobante,
	banco_emisor, total, payment_method, status, created_at, updated_at`

// CreateOrder persists an order aggregate as one transaction: the
// customer row (first order only), a conditional stock decrement per
// line, the order header, its items and the outbox event commit or roll
// back together. No partial order is ever visible to readers.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// First-seen wins: an existing customer row is never updated.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO customers (cedula, full_name, email, phone, address)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (cedula) DO NOTHING`,
		order.Customer.Cedula,
		order.Customer.FullName,
		order.Customer.Email,
		order.Customer.Phone,
		order.Customer.Address,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	// Check-and-decrement in one statement so concurrent orders cannot
	// both take the last unit.
	for _, item := range order.Items {
		result, decErr := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW()
			 WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID)
		if decErr != nil {
			return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, decErr)
		}
		affected, affErr := result.RowsAffected()
		if affErr != nil {
			return fmt.Errorf("failed to read affected rows: %w", affErr)
		}
		if affected == 0 {
			var exists bool
			if chkErr := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`,
				item.ProductID).Scan(&exists); chkErr != nil {
				return fmt.Errorf("failed to check product %s: %w", item.ProductID, chkErr)
			}
			if !exists {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrProductNotFound)
			}
			return fmt.Errorf("product %s: %w", item.ProductID, ErrInsufficientStock)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (
			id, order_number, date, customer_full_name, customer_cedula,
			customer_email, customer_phone, customer_address,
			fecha_pago, comprobante, banco_emisor,
			total, payment_method, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		order.ID,
		order.OrderNumber,
		order.Date,
		order.Customer.FullName,
		order.Customer.Cedula,
		order.Customer.Email,
		order.Customer.Phone,
		order.Customer.Address,
		order.PaymentDate,
		order.Voucher,
		order.IssuingBank,
		order.Total,
		order.PaymentMethod,
		order.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.ProductPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	payload, err := json.Marshal(orderCreatedPayload(order))
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_outbox (id, order_id, event_type, payload)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), order.ID, "order.created", payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func orderCreatedPayload(order *domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"product_id":    item.ProductID,
			"product_name":  item.ProductName,
			"product_price": item.ProductPrice,
			"quantity":      item.Quantity,
		})
	}
	return map[string]any{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"cedula":         order.Customer.Cedula,
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
		"items":          items,
	}
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	var fechaPago sql.NullTime
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.Date,
		&o.Customer.FullName,
		&o.Customer.Cedula,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address,
		&fechaPago,
		&o.Voucher,
		&o.IssuingBank,
		&o.Total,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fechaPago.Valid {
		o.PaymentDate = &fechaPago.Time
	}
	return o, nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.orderItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	return order, nil
}

// GetAllOrders returns every order newest first, items fetched in one
// bulk query and grouped by parent id rather than per order.
func (r *Repository) GetAllOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	var ids []string
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan order: %w", scanErr)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if len(orders) == 0 {
		return []*domain.Order{}, nil
	}

	itemsByOrder, err := r.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = itemsByOrder[order.ID]
		if order.Items == nil {
			order.Items = []domain.OrderItem{}
		}
	}
	return orders, nil
}

func (r *Repository) orderItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, product_price, quantity, created_at
	          FROM order_items WHERE order_id = ANY($1) ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductPrice,
			&item.Quantity,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return grouped, nil
}

// UpdateOrderStatus mutates only the status and updated_at columns; the
// rest of the order is immutable after creation.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}

	return r.GetOrderByID(ctx, id)
}
