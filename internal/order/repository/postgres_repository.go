package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Untuk pq.Error

	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStaleOrderStatus: status order berubah di antara read dan write.
	// Transisi basi harus gagal keras, bukan menimpa diam-diam.
	ErrStaleOrderStatus = errors.New("order status changed concurrently")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrDuplicateOrder   = errors.New("order with this idempotency key already exists")
)

type OrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)

	// Semua mutasi status adalah conditional update (compare-and-swap pada
	// kolom status) sehingga dua admin yang balapan tidak saling menimpa.
	TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	MarkPaid(ctx context.Context, orderID string, paidAt time.Time, result domain.PaymentResult) error
	MarkDelivered(ctx context.Context, orderID string, from domain.OrderStatus, deliveredAt, returnDeadline time.Time) error
	RequestCancellation(ctx context.Context, orderID string, details domain.CancellationDetails) error
	ResolveCancellation(ctx context.Context, orderID string, to domain.OrderStatus, cancellationStatus domain.CancellationStatus) error
	MarkRefunded(ctx context.Context, orderID string, refundedAt time.Time) error
	MarkReturnRequested(ctx context.Context, orderID, returnID string, requestedAt time.Time) error
	SetReturnOutcome(ctx context.Context, orderID string, from, to domain.OrderStatus, refunded bool, at time.Time) error
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

// CreateOrderWithItems menyimpan order dan item-itemnya dalam satu transaksi.
func (r *postgresOrderRepository) CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to begin tx", err)
		return err
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	if order.Status == "" {
		order.Status = domain.StatusProcessing
	}

	orderQuery := `INSERT INTO orders (
                       id, user_id, status,
                       ship_full_name, ship_line1, ship_city, ship_postal_code, ship_country,
                       payment_method, items_price, discount_amount, tax_price, shipping_price, total_price,
                       coupon_applied, is_paid, idempotency_key, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	var idemKey sql.NullString
	if order.IdempotencyKey != nil {
		idemKey = sql.NullString{String: *order.IdempotencyKey, Valid: true}
	}

	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID, order.UserID, order.Status,
		order.ShippingAddress.FullName, order.ShippingAddress.Line1, order.ShippingAddress.City,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.ItemsPrice, order.DiscountAmount, order.TaxPrice,
		order.ShippingPrice, order.TotalPrice, order.CouponApplied, order.IsPaid,
		idemKey, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		// Kode error '23505' adalah unique_violation (idempotency_key)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		logger.Error("CreateOrderWithItems: failed to insert order", err)
		return err
	}

	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO order_items (id, order_id, product_id, variant_id, name, image, unit_price, quantity)
                                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to prepare item statement", err)
		return err
	}
	defer itemStmt.Close()

	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = order.ID
		var variantID sql.NullString
		if items[i].VariantID != nil {
			variantID = sql.NullString{String: *items[i].VariantID, Valid: true}
		}
		_, err = itemStmt.ExecContext(ctx, items[i].ID, items[i].OrderID, items[i].ProductID,
			variantID, items[i].Name, items[i].Image, items[i].UnitPrice, items[i].Quantity)
		if err != nil {
			logger.Error("CreateOrderWithItems: failed to insert order item", err)
			return err // Rollback akan terjadi
		}
	}
	order.Items = items

	return tx.Commit()
}

const orderColumns = `id, user_id, status,
       ship_full_name, ship_line1, ship_city, ship_postal_code, ship_country,
       payment_method, items_price, discount_amount, tax_price, shipping_price, total_price, coupon_applied,
       is_paid, paid_at, payment_result_id, payment_result_status,
       is_delivered, delivered_at, return_deadline,
       is_refunded, refunded_at,
       cancellation_reason, cancellation_status, cancellation_requested_at,
       return_initiated, return_request_date, return_id,
       created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var o domain.Order
	var paidAt, deliveredAt, returnDeadline, refundedAt, cancRequestedAt, returnRequestDate sql.NullTime
	var paymentResultID, paymentResultStatus, cancReason, cancStatus, returnID sql.NullString

	err := row.Scan(&o.ID, &o.UserID, &o.Status,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Line1, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.PaymentMethod, &o.ItemsPrice, &o.DiscountAmount, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice, &o.CouponApplied,
		&o.IsPaid, &paidAt, &paymentResultID, &paymentResultStatus,
		&o.IsDelivered, &deliveredAt, &returnDeadline,
		&o.IsRefunded, &refundedAt,
		&cancReason, &cancStatus, &cancRequestedAt,
		&o.ReturnInitiated, &returnRequestDate, &returnID,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if paymentResultID.Valid {
		o.PaymentResult = &domain.PaymentResult{ID: paymentResultID.String, Status: paymentResultStatus.String}
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if returnDeadline.Valid {
		o.ReturnDeadline = &returnDeadline.Time
	}
	if refundedAt.Valid {
		o.RefundedAt = &refundedAt.Time
	}
	if cancStatus.Valid {
		o.Cancellation = &domain.CancellationDetails{
			Reason:      cancReason.String,
			Status:      domain.CancellationStatus(cancStatus.String),
			RequestedAt: cancRequestedAt.Time,
		}
	}
	if returnRequestDate.Valid {
		o.ReturnRequestDate = &returnRequestDate.Time
	}
	if returnID.Valid {
		o.ReturnID = &returnID.String
	}
	return &o, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err)
		return nil, err
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND idempotency_key = $2`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, userID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByIdempotencyKey: query failed", err)
		return nil, err
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, variant_id, name, image, unit_price, quantity
              FROM order_items WHERE order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("getOrderItems: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var i domain.OrderItem
		var variantID sql.NullString
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &variantID, &i.Name, &i.Image, &i.UnitPrice, &i.Quantity); err != nil {
			logger.Error("getOrderItems: scan failed", err)
			return nil, err
		}
		if variantID.Valid {
			i.VariantID = &variantID.String
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *postgresOrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("listOrders: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			logger.Error("listOrders: scan failed", err)
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *postgresOrderRepository) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

// classifyZeroRows membedakan order hilang vs status yang sudah berubah.
func (r *postgresOrderRepository) classifyZeroRows(ctx context.Context, orderID string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
	if err != nil {
		logger.Error("classifyZeroRows: query failed", err)
		return err
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrStaleOrderStatus
}

func (r *postgresOrderRepository) TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		logger.Error("TransitionStatus: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}

func (r *postgresOrderRepository) MarkPaid(ctx context.Context, orderID string, paidAt time.Time, result domain.PaymentResult) error {
	query := `UPDATE orders
              SET is_paid = TRUE, paid_at = $1, payment_result_id = $2, payment_result_status = $3, updated_at = NOW()
              WHERE id = $4 AND is_paid = FALSE`
	res, err := r.db.ExecContext(ctx, query, paidAt, result.ID, result.Status, orderID)
	if err != nil {
		logger.Error("MarkPaid: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		if err := r.classifyZeroRows(ctx, orderID); errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return ErrOrderAlreadyPaid
	}
	return nil
}

func (r *postgresOrderRepository) MarkDelivered(ctx context.Context, orderID string, from domain.OrderStatus, deliveredAt, returnDeadline time.Time) error {
	query := `UPDATE orders
              SET status = $1, is_delivered = TRUE, delivered_at = $2, return_deadline = $3, updated_at = NOW()
              WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, domain.StatusDelivered, deliveredAt, returnDeadline, orderID, from)
	if err != nil {
		logger.Error("MarkDelivered: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}

func (r *postgresOrderRepository) RequestCancellation(ctx context.Context, orderID string, details domain.CancellationDetails) error {
	query := `UPDATE orders
              SET status = $1, cancellation_reason = $2, cancellation_status = $3, cancellation_requested_at = $4, updated_at = NOW()
              WHERE id = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query,
		domain.StatusCancellationRequested, details.Reason, details.Status, details.RequestedAt,
		orderID, domain.StatusProcessing)
	if err != nil {
		logger.Error("RequestCancellation: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}

func (r *postgresOrderRepository) ResolveCancellation(ctx context.Context, orderID string, to domain.OrderStatus, cancellationStatus domain.CancellationStatus) error {
	query := `UPDATE orders
              SET status = $1, cancellation_status = $2, updated_at = NOW()
              WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, to, cancellationStatus, orderID, domain.StatusCancellationRequested)
	if err != nil {
		logger.Error("ResolveCancellation: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}

func (r *postgresOrderRepository) MarkRefunded(ctx context.Context, orderID string, refundedAt time.Time) error {
	query := `UPDATE orders SET is_refunded = TRUE, refunded_at = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, refundedAt, orderID)
	if err != nil {
		logger.Error("MarkRefunded: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkReturnRequested dipakai Return Workflow: hanya sah dari Delivered dan
// selama belum ada return lain (return_initiated ikut jadi filter CAS).
func (r *postgresOrderRepository) MarkReturnRequested(ctx context.Context, orderID, returnID string, requestedAt time.Time) error {
	query := `UPDATE orders
              SET status = $1, return_initiated = TRUE, return_request_date = $2, return_id = $3, updated_at = NOW()
              WHERE id = $4 AND status = $5 AND return_initiated = FALSE`
	res, err := r.db.ExecContext(ctx, query,
		domain.StatusReturnRequested, requestedAt, returnID, orderID, domain.StatusDelivered)
	if err != nil {
		logger.Error("MarkReturnRequested: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}

func (r *postgresOrderRepository) SetReturnOutcome(ctx context.Context, orderID string, from, to domain.OrderStatus, refunded bool, at time.Time) error {
	var query string
	var args []interface{}
	if refunded {
		query = `UPDATE orders SET status = $1, is_refunded = TRUE, refunded_at = $2, updated_at = NOW()
                 WHERE id = $3 AND status = $4`
		args = []interface{}{to, at, orderID, from}
	} else {
		query = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
		args = []interface{}{to, orderID, from}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("SetReturnOutcome: exec failed", err)
		return err
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return r.classifyZeroRows(ctx, orderID)
	}
	return nil
}
