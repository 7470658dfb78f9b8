package user

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIDQuery = `
		SELECT user_id, username, email, password, phone, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, username, email, password, phone, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	getUserByUsernameQuery = `
		SELECT user_id, username, email, password, phone, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	insertUserQuery = `
		INSERT INTO users (username, email, password, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET username = COALESCE(NULLIF($1, ''), username),
			email = COALESCE(NULLIF($2, ''), email),
			phone = COALESCE(NULLIF($3, ''), phone),
			updated_at = $4
		WHERE user_id = $5
	`
	updatePasswordQuery = `UPDATE users SET password = $1, updated_at = $2 WHERE user_id = $3`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return scanRow(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanRow(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) GetByUsername(username string) (User, error) {
	return scanRow(r.db.QueryRow(getUserByUsernameQuery, username))
}

func (r *PostgresRepository) Create(u User) (User, error) {
	var id int
	err := r.db.QueryRow(
		insertUserQuery,
		u.Username,
		u.Email,
		u.Password,
		u.Phone,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return User{}, err
	}

	u.ID = id
	return u, nil
}

func (r *PostgresRepository) Update(id int, upd User) (User, error) {
	result, err := r.db.Exec(updateUserQuery, upd.Username, upd.Email, upd.Phone, upd.UpdatedAt, id)
	if err != nil {
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) UpdatePassword(id int, hashed, updatedAt string) error {
	result, err := r.db.Exec(updatePasswordQuery, hashed, updatedAt, id)
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

func scanRow(row rowScanner) (User, error) {
	u := User{}
	var phone sql.NullString
	var createdAt sql.NullString
	var updatedAt sql.NullString

	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &phone, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	if phone.Valid {
		u.Phone = phone.String
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.String
	}
	return u, nil
}
