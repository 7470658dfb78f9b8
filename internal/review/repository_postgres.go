package review

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listReviewsQuery = `
		SELECT review_id, product_id, user_id, rating, content, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY review_id DESC
	`
	insertReviewQuery = `
		INSERT INTO product_reviews (product_id, user_id, rating, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING review_id
	`
	refreshRatingQuery = `
		UPDATE products
		SET rating = (SELECT AVG(rating) FROM product_reviews WHERE product_id = $1)
		WHERE product_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByProduct(productID int) ([]Review, error) {
	rows, err := r.db.Query(listReviewsQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		var rv Review
		var content sql.NullString
		var createdAt sql.NullString
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &content, &createdAt); err != nil {
			return nil, err
		}
		if content.Valid {
			rv.Content = content.String
		}
		if createdAt.Valid {
			rv.CreatedAt = createdAt.String
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// Create inserts the review and refreshes the product's aggregate rating in
// the same transaction.
func (r *PostgresRepository) Create(review Review) (Review, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Review{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		insertReviewQuery,
		review.ProductID, review.UserID, review.Rating, review.Content, review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		return Review{}, err
	}

	if _, err := tx.Exec(refreshRatingQuery, review.ProductID); err != nil {
		return Review{}, err
	}

	if err := tx.Commit(); err != nil {
		return Review{}, err
	}
	return review, nil
}
