package coupon

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	couponColumns = `coupon_id, name, type, amount, min_amount, start_time, end_time, is_active`

	listCouponsQuery       = `SELECT ` + couponColumns + ` FROM coupons ORDER BY coupon_id`
	listActiveCouponsQuery = `SELECT ` + couponColumns + ` FROM coupons WHERE is_active ORDER BY coupon_id`
	getCouponQuery         = `SELECT ` + couponColumns + ` FROM coupons WHERE coupon_id = $1`

	insertUserCouponQuery = `
		INSERT INTO user_coupons (user_id, coupon_id, status, claimed_at)
		VALUES ($1, $2, 0, $3)
		RETURNING user_coupon_id
	`
	listUserCouponsQuery = `
		SELECT uc.user_coupon_id, uc.user_id, uc.coupon_id, uc.status, uc.claimed_at, uc.used_at,
			c.coupon_id, c.name, c.type, c.amount, c.min_amount, c.start_time, c.end_time, c.is_active
		FROM user_coupons uc
		JOIN coupons c ON c.coupon_id = uc.coupon_id
		WHERE uc.user_id = $1 AND uc.status = ANY($2::int[])
		ORDER BY uc.user_coupon_id DESC
	`
	getUserCouponQuery = `
		SELECT uc.user_coupon_id, uc.user_id, uc.coupon_id, uc.status, uc.claimed_at, uc.used_at,
			c.coupon_id, c.name, c.type, c.amount, c.min_amount, c.start_time, c.end_time, c.is_active
		FROM user_coupons uc
		JOIN coupons c ON c.coupon_id = uc.coupon_id
		WHERE uc.user_coupon_id = $1
	`
	markUsedQuery = `UPDATE user_coupons SET status = 1, used_at = $1 WHERE user_coupon_id = $2 AND status = 0`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(onlyActive bool) ([]Coupon, error) {
	query := listCouponsQuery
	if onlyActive {
		query = listActiveCouponsQuery
	}

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]Coupon, 0)
	for rows.Next() {
		var c Coupon
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Amount, &c.MinAmount, &c.StartTime, &c.EndTime, &c.IsActive); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Coupon, error) {
	var c Coupon
	err := r.db.QueryRow(getCouponQuery, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Amount, &c.MinAmount, &c.StartTime, &c.EndTime, &c.IsActive)
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	if err != nil {
		return Coupon{}, err
	}
	return c, nil
}

// Claim relies on the unique (user_id, coupon_id) index to keep claims
// single per user.
func (r *PostgresRepository) Claim(userID, couponID int, claimedAt string) (UserCoupon, error) {
	c, err := r.GetByID(couponID)
	if err != nil {
		return UserCoupon{}, err
	}

	uc := UserCoupon{UserID: userID, CouponID: couponID, Status: StatusUnused, ClaimedAt: claimedAt, Coupon: c}
	err = r.db.QueryRow(insertUserCouponQuery, userID, couponID, claimedAt).Scan(&uc.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return UserCoupon{}, ErrAlreadyClaimed
		}
		return UserCoupon{}, err
	}
	return uc, nil
}

func (r *PostgresRepository) ListUserCoupons(userID int, status *int) ([]UserCoupon, error) {
	statuses := []int{StatusUnused, StatusUsed, StatusExpired}
	if status != nil {
		statuses = []int{*status}
	}

	rows, err := r.db.Query(listUserCouponsQuery, userID, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userCoupons := make([]UserCoupon, 0)
	for rows.Next() {
		uc, err := scanUserCoupon(rows)
		if err != nil {
			return nil, err
		}
		userCoupons = append(userCoupons, uc)
	}
	return userCoupons, rows.Err()
}

func (r *PostgresRepository) GetUserCoupon(id int) (UserCoupon, error) {
	uc, err := scanUserCoupon(r.db.QueryRow(getUserCouponQuery, id))
	if err == sql.ErrNoRows {
		return UserCoupon{}, ErrNotFound
	}
	if err != nil {
		return UserCoupon{}, err
	}
	return uc, nil
}

func (r *PostgresRepository) MarkUsed(id int, usedAt string) error {
	result, err := r.db.Exec(markUsedQuery, usedAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetUserCoupon(id); err != nil {
			return err
		}
		return ErrAlreadyUsed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserCoupon(row rowScanner) (UserCoupon, error) {
	var uc UserCoupon
	var claimedAt, usedAt sql.NullString
	err := row.Scan(
		&uc.ID, &uc.UserID, &uc.CouponID, &uc.Status, &claimedAt, &usedAt,
		&uc.Coupon.ID, &uc.Coupon.Name, &uc.Coupon.Type, &uc.Coupon.Amount,
		&uc.Coupon.MinAmount, &uc.Coupon.StartTime, &uc.Coupon.EndTime, &uc.Coupon.IsActive,
	)
	if err != nil {
		return UserCoupon{}, err
	}
	if claimedAt.Valid {
		uc.ClaimedAt = claimedAt.String
	}
	if usedAt.Valid {
		uc.UsedAt = usedAt.String
	}
	return uc, nil
}
