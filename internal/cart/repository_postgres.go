package cart

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery    = `SELECT cart_id FROM carts WHERE user_id = $1`
	insertCartQuery = `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING cart_id`
	listItemsQuery  = `
		SELECT item_id, cart_id, product_id, quantity, selected
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY item_id
	`
	upsertItemQuery = `
		INSERT INTO cart_items (cart_id, product_id, quantity, selected)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING item_id, quantity, selected
	`
	updateQuantityQuery = `UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3`
	removeItemQuery     = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	selectItemQuery     = `UPDATE cart_items SET selected = $1 WHERE cart_id = $2 AND product_id = $3`
	removeItemsQuery    = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = ANY($2::int[])`
	clearCartQuery      = `DELETE FROM cart_items WHERE cart_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreateByUser(userID int) (Cart, error) {
	c := Cart{UserID: userID}

	err := r.db.QueryRow(getCartQuery, userID).Scan(&c.ID)
	if err == sql.ErrNoRows {
		err = r.db.QueryRow(insertCartQuery, userID).Scan(&c.ID)
	}
	if err != nil {
		return Cart{}, err
	}

	rows, err := r.db.Query(listItemsQuery, c.ID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Selected); err != nil {
			return Cart{}, err
		}
		c.Items = append(c.Items, item)
	}
	return c, rows.Err()
}

func (r *PostgresRepository) AddItem(cartID, productID, quantity int) (Item, error) {
	item := Item{CartID: cartID, ProductID: productID}
	err := r.db.QueryRow(upsertItemQuery, cartID, productID, quantity).
		Scan(&item.ID, &item.Quantity, &item.Selected)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *PostgresRepository) UpdateItemQuantity(cartID, productID, quantity int) error {
	return r.execExpectingRow(updateQuantityQuery, quantity, cartID, productID)
}

func (r *PostgresRepository) RemoveItem(cartID, productID int) error {
	return r.execExpectingRow(removeItemQuery, cartID, productID)
}

func (r *PostgresRepository) SelectItem(cartID, productID int, selected bool) error {
	return r.execExpectingRow(selectItemQuery, selected, cartID, productID)
}

func (r *PostgresRepository) RemoveItems(cartID int, productIDs []int) error {
	_, err := r.db.Exec(removeItemsQuery, cartID, pq.Array(productIDs))
	return err
}

func (r *PostgresRepository) Clear(cartID int) error {
	_, err := r.db.Exec(clearCartQuery, cartID)
	return err
}

func (r *PostgresRepository) execExpectingRow(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
