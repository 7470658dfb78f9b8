package order

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	takeStockQuery = `
		UPDATE products
		SET stock = stock - $1, sales = sales + $1
		WHERE product_id = $2 AND stock >= $1
	`
	restoreStockQuery = `
		UPDATE products
		SET stock = stock + $1, sales = sales - $1
		WHERE product_id = $2
	`
	insertOrderQuery = `
		INSERT INTO orders (
			order_no, user_id, status, total_amount, discount_amount, shipping_fee, final_amount,
			payment_method, receiver, receiver_phone, receiver_address, user_coupon_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING order_id
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, product_name, product_image, price, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_item_id
	`
	pruneCartQuery = `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.cart_id
			AND carts.user_id = $1
			AND cart_items.product_id = ANY($2::int[])
	`
	spendCouponQuery = `
		UPDATE user_coupons SET status = 1, used_at = $1
		WHERE user_coupon_id = $2 AND status = 0
	`

	listOrdersQuery = `
		SELECT order_id, order_no, user_id, status, total_amount, discount_amount, shipping_fee, final_amount,
			payment_method, payment_no, payment_time, receiver, receiver_phone, receiver_address,
			shipping_no, shipping_company, complete_time, user_coupon_id, created_at
		FROM orders
		WHERE user_id = $1 AND status = ANY($2::int[])
		ORDER BY order_id DESC
	`
	getOrderQuery = `
		SELECT order_id, order_no, user_id, status, total_amount, discount_amount, shipping_fee, final_amount,
			payment_method, payment_no, payment_time, receiver, receiver_phone, receiver_address,
			shipping_no, shipping_company, complete_time, user_coupon_id, created_at
		FROM orders
		WHERE order_id = $1
	`
	listOrderItemsQuery = `
		SELECT order_item_id, order_id, product_id, product_name, product_image, price, quantity, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id
	`
	payQuery = `
		UPDATE orders SET status = 1, payment_method = $1, payment_no = $2, payment_time = $3
		WHERE order_id = $4 AND status = 0
	`
	shipQuery = `
		UPDATE orders SET status = 2, shipping_no = $1, shipping_company = $2
		WHERE order_id = $3 AND status = 1
	`
	confirmReceiveQuery = `
		UPDATE orders SET status = 3, complete_time = $1
		WHERE order_id = $2 AND status = 2
	`
	cancelQuery      = `UPDATE orders SET status = 4 WHERE order_id = $1 AND status = 0`
	orderStatusQuery = `SELECT status FROM orders WHERE order_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create runs the whole checkout in one transaction. The stock decrement is
// a conditional update, so a concurrent checkout that drains inventory makes
// this one fail and roll back without touching anything.
func (r *PostgresRepository) Create(order Order, consumedCartProducts []int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	for _, item := range order.Items {
		result, err := tx.Exec(takeStockQuery, item.Quantity, item.ProductID)
		if err != nil {
			return Order{}, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if affected == 0 {
			return Order{}, ErrInsufficientStock
		}
	}

	err = tx.QueryRow(
		insertOrderQuery,
		order.OrderNo, order.UserID, order.Status,
		order.TotalAmount, order.DiscountAmount, order.ShippingFee, order.FinalAmount,
		order.PaymentMethod, order.Receiver, order.ReceiverPhone, order.ReceiverAddress,
		order.UserCouponID, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return Order{}, err
	}

	for i, item := range order.Items {
		err = tx.QueryRow(
			insertOrderItemQuery,
			order.ID, item.ProductID, item.ProductName, item.ProductImage, item.Price, item.Quantity, item.TotalPrice,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return Order{}, err
		}
		order.Items[i].OrderID = order.ID
	}

	if len(consumedCartProducts) > 0 {
		if _, err := tx.Exec(pruneCartQuery, order.UserID, pq.Array(consumedCartProducts)); err != nil {
			return Order{}, err
		}
	}

	if order.UserCouponID != nil {
		result, err := tx.Exec(spendCouponQuery, order.CreatedAt, *order.UserCouponID)
		if err != nil {
			return Order{}, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if affected == 0 {
			return Order{}, ErrInvalidStatus
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *PostgresRepository) ListByUser(userID int, status *int) ([]Order, error) {
	statuses := []int{StatusPendingPayment, StatusPendingShipment, StatusPendingReceipt, StatusCompleted, StatusCancelled}
	if status != nil {
		statuses = []int{*status}
	}

	rows, err := r.db.Query(listOrdersQuery, userID, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = r.listItems(orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(getOrderQuery, id))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	if o.Items, err = r.listItems(id); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) Pay(id int, paymentMethod, paymentNo, paymentTime string) error {
	return r.conditionalUpdate(id, payQuery, paymentMethod, paymentNo, paymentTime, id)
}

func (r *PostgresRepository) Ship(id int, shippingNo, shippingCompany string) error {
	return r.conditionalUpdate(id, shipQuery, shippingNo, shippingCompany, id)
}

func (r *PostgresRepository) ConfirmReceive(id int, completeTime string) error {
	return r.conditionalUpdate(id, confirmReceiveQuery, completeTime, id)
}

// Cancel flips a pending-payment order to cancelled and hands the reserved
// stock back, in one transaction.
func (r *PostgresRepository) Cancel(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(cancelQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.statusError(id)
	}

	rows, err := tx.Query(listOrderItemsQuery, id)
	if err != nil {
		return err
	}
	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductImage, &item.Price, &item.Quantity, &item.TotalPrice); err != nil {
			rows.Close()
			return err
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, item := range items {
		if _, err := tx.Exec(restoreStockQuery, item.Quantity, item.ProductID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) conditionalUpdate(id int, query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.statusError(id)
	}
	return nil
}

// statusError distinguishes a missing order from one in the wrong state
// after a conditional update matched nothing.
func (r *PostgresRepository) statusError(id int) error {
	var status int
	err := r.db.QueryRow(orderStatusQuery, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidStatus
}

func (r *PostgresRepository) listItems(orderID int) ([]Item, error) {
	rows, err := r.db.Query(listOrderItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductImage, &item.Price, &item.Quantity, &item.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var paymentNo, paymentTime, shippingNo, shippingCompany, completeTime sql.NullString
	var userCouponID sql.NullInt64

	err := row.Scan(
		&o.ID, &o.OrderNo, &o.UserID, &o.Status,
		&o.TotalAmount, &o.DiscountAmount, &o.ShippingFee, &o.FinalAmount,
		&o.PaymentMethod, &paymentNo, &paymentTime,
		&o.Receiver, &o.ReceiverPhone, &o.ReceiverAddress,
		&shippingNo, &shippingCompany, &completeTime, &userCouponID, &o.CreatedAt,
	)
	if err != nil {
		return Order{}, err
	}

	if paymentNo.Valid {
		o.PaymentNo = paymentNo.String
	}
	if paymentTime.Valid {
		o.PaymentTime = paymentTime.String
	}
	if shippingNo.Valid {
		o.ShippingNo = shippingNo.String
	}
	if shippingCompany.Valid {
		o.ShippingCompany = shippingCompany.String
	}
	if completeTime.Valid {
		o.CompleteTime = completeTime.String
	}
	if userCouponID.Valid {
		id := int(userCouponID.Int64)
		o.UserCouponID = &id
	}
	return o, nil
}
