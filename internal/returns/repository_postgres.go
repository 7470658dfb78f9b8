package returns

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertRequestQuery = `
		INSERT INTO return_requests (
			return_no, order_id, user_id, product_id, type, reason, description, quantity,
			total_amount, discount_share, refund_amount, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING return_id
	`
	insertImageQuery = `
		INSERT INTO return_images (return_id, url)
		VALUES ($1, $2)
		RETURNING return_image_id
	`
	listRequestsQuery = `
		SELECT return_id, return_no, order_id, user_id, product_id, type, reason, description, quantity,
			total_amount, discount_share, refund_amount, status, shipping_no, shipping_company,
			exchange_order_id, created_at
		FROM return_requests
		WHERE user_id = $1 AND status = ANY($2::int[])
		ORDER BY return_id DESC
	`
	getRequestQuery = `
		SELECT return_id, return_no, order_id, user_id, product_id, type, reason, description, quantity,
			total_amount, discount_share, refund_amount, status, shipping_no, shipping_company,
			exchange_order_id, created_at
		FROM return_requests
		WHERE return_id = $1
	`
	listImagesQuery = `
		SELECT return_image_id, return_id, url
		FROM return_images
		WHERE return_id = $1
		ORDER BY return_image_id
	`
	cancelRequestQuery  = `UPDATE return_requests SET status = 4 WHERE return_id = $1 AND status = 0`
	updateShippingQuery = `UPDATE return_requests SET shipping_no = $1, shipping_company = $2 WHERE return_id = $3 AND status = 1`
	approveRequestQuery = `UPDATE return_requests SET status = 1, exchange_order_id = $1 WHERE return_id = $2 AND status = 0`
	rejectRequestQuery  = `UPDATE return_requests SET status = 2 WHERE return_id = $1 AND status = 0`
	completeRequestQuery = `UPDATE return_requests SET status = 3 WHERE return_id = $1 AND status = 1`
	requestStatusQuery   = `SELECT status FROM return_requests WHERE return_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the request and its images in one transaction. The unique
// (order_id, product_id) index keeps requests single per order line.
func (r *PostgresRepository) Create(req Request) (Request, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		insertRequestQuery,
		req.ReturnNo, req.OrderID, req.UserID, req.ProductID, req.Type, req.Reason, req.Description,
		req.Quantity, req.TotalAmount, req.DiscountShare, req.RefundAmount, req.Status, req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return Request{}, ErrDuplicate
		}
		return Request{}, err
	}

	for i := range req.Images {
		err = tx.QueryRow(insertImageQuery, req.ID, req.Images[i].URL).Scan(&req.Images[i].ID)
		if err != nil {
			return Request{}, err
		}
		req.Images[i].ReturnID = req.ID
	}

	if err := tx.Commit(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (r *PostgresRepository) ListByUser(userID int, status *int) ([]Request, error) {
	statuses := []int{StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled}
	if status != nil {
		statuses = []int{*status}
	}

	rows, err := r.db.Query(listRequestsQuery, userID, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		if requests[i].Images, err = r.listImages(requests[i].ID); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (r *PostgresRepository) GetByID(id int) (Request, error) {
	req, err := scanRequest(r.db.QueryRow(getRequestQuery, id))
	if err == sql.ErrNoRows {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}

	if req.Images, err = r.listImages(id); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (r *PostgresRepository) Cancel(id int) error {
	return r.conditionalUpdate(id, cancelRequestQuery, id)
}

func (r *PostgresRepository) UpdateShipping(id int, shippingNo, shippingCompany string) error {
	return r.conditionalUpdate(id, updateShippingQuery, shippingNo, shippingCompany, id)
}

func (r *PostgresRepository) Approve(id int, exchangeOrderID *int) error {
	return r.conditionalUpdate(id, approveRequestQuery, exchangeOrderID, id)
}

func (r *PostgresRepository) Reject(id int) error {
	return r.conditionalUpdate(id, rejectRequestQuery, id)
}

func (r *PostgresRepository) Complete(id int) error {
	return r.conditionalUpdate(id, completeRequestQuery, id)
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
		var status int
		err := r.db.QueryRow(requestStatusQuery, id).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrInvalidStatus
	}
	return nil
}

func (r *PostgresRepository) listImages(returnID int) ([]Image, error) {
	rows, err := r.db.Query(listImagesQuery, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]Image, 0)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ReturnID, &img.URL); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var req Request
	var description, shippingNo, shippingCompany sql.NullString
	var exchangeOrderID sql.NullInt64

	err := row.Scan(
		&req.ID, &req.ReturnNo, &req.OrderID, &req.UserID, &req.ProductID, &req.Type,
		&req.Reason, &description, &req.Quantity,
		&req.TotalAmount, &req.DiscountShare, &req.RefundAmount, &req.Status,
		&shippingNo, &shippingCompany, &exchangeOrderID, &req.CreatedAt,
	)
	if err != nil {
		return Request{}, err
	}

	if description.Valid {
		req.Description = description.String
	}
	if shippingNo.Valid {
		req.ShippingNo = shippingNo.String
	}
	if shippingCompany.Valid {
		req.ShippingCompany = shippingCompany.String
	}
	if exchangeOrderID.Valid {
		id := int(exchangeOrderID.Int64)
		req.ExchangeOrderID = &id
	}
	return req, nil
}
