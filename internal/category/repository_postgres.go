package category

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listActiveQuery = `
		SELECT category_id, name, parent_id, level, sort, is_active
		FROM categories
		WHERE is_active
		ORDER BY level, sort, category_id
	`
	getCategoryQuery = `
		SELECT category_id, name, parent_id, level, sort, is_active
		FROM categories
		WHERE category_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListActive() ([]Category, error) {
	rows, err := r.db.Query(listActiveQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		var parent sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &parent, &c.Level, &c.Sort, &c.IsActive); err != nil {
			return nil, err
		}
		if parent.Valid {
			p := int(parent.Int64)
			c.ParentID = &p
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Category, error) {
	var c Category
	var parent sql.NullInt64
	err := r.db.QueryRow(getCategoryQuery, id).Scan(&c.ID, &c.Name, &parent, &c.Level, &c.Sort, &c.IsActive)
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	if parent.Valid {
		p := int(parent.Int64)
		c.ParentID = &p
	}
	return c, nil
}
