package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listAddressesQuery = `
		SELECT address_id, user_id, receiver, phone, province, city, district, detail, is_default
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, address_id
	`
	getAddressQuery = `
		SELECT address_id, user_id, receiver, phone, province, city, district, detail, is_default
		FROM addresses
		WHERE address_id = $1
	`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, receiver, phone, province, city, district, detail, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING address_id
	`
	updateAddressQuery = `
		UPDATE addresses
		SET receiver = $1, phone = $2, province = $3, city = $4, district = $5, detail = $6, is_default = $7
		WHERE address_id = $8
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE address_id = $1`
	clearDefaultQuery  = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`
	setDefaultQuery    = `UPDATE addresses SET is_default = TRUE WHERE address_id = $1 AND user_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(userID int) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Receiver, &a.Phone, &a.Province, &a.City, &a.District, &a.Detail, &a.IsDefault); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Address, error) {
	var a Address
	err := r.db.QueryRow(getAddressQuery, id).
		Scan(&a.ID, &a.UserID, &a.Receiver, &a.Phone, &a.Province, &a.City, &a.District, &a.Detail, &a.IsDefault)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(addr Address) (Address, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if addr.IsDefault {
		if _, err := tx.Exec(clearDefaultQuery, addr.UserID); err != nil {
			return Address{}, err
		}
	}

	err = tx.QueryRow(
		insertAddressQuery,
		addr.UserID, addr.Receiver, addr.Phone, addr.Province, addr.City, addr.District, addr.Detail, addr.IsDefault,
	).Scan(&addr.ID)
	if err != nil {
		return Address{}, err
	}

	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

func (r *PostgresRepository) Update(id int, upd Address) (Address, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if upd.IsDefault {
		if _, err := tx.Exec(clearDefaultQuery, upd.UserID); err != nil {
			return Address{}, err
		}
	}

	result, err := tx.Exec(updateAddressQuery, upd.Receiver, upd.Phone, upd.Province, upd.City, upd.District, upd.Detail, upd.IsDefault, id)
	if err != nil {
		return Address{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Address{}, err
	}
	if affected == 0 {
		return Address{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return Address{}, err
	}

	upd.ID = id
	return upd, nil
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteAddressQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault clears the user's previous default and marks the given address
// in one transaction.
func (r *PostgresRepository) SetDefault(userID, id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(clearDefaultQuery, userID); err != nil {
		return err
	}

	result, err := tx.Exec(setDefaultQuery, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
