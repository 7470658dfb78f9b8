package product

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, category_id, name, description, price, stock, sales, rating, is_active, created_at`

	getProductQuery = `
		SELECT product_id, category_id, name, description, price, stock, sales, rating, is_active, created_at
		FROM products
		WHERE product_id = $1
	`
	getProductsByIDsQuery = `
		SELECT product_id, category_id, name, description, price, stock, sales, rating, is_active, created_at
		FROM products
		WHERE product_id = ANY($1::int[])
	`
	listImagesQuery = `
		SELECT image_id, product_id, url, sort
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort, image_id
	`
	listSpecsQuery = `
		SELECT spec_id, product_id, name, value
		FROM product_specs
		WHERE product_id = $1
		ORDER BY spec_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(filter Filter) ([]Product, error) {
	query := &strings.Builder{}
	query.WriteString("SELECT ")
	query.WriteString(productColumns)
	query.WriteString(" FROM products WHERE is_active")

	args := make([]any, 0, 4)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		fmt.Fprintf(query, " AND category_id = $%d", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		fmt.Fprintf(query, " AND price >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		fmt.Fprintf(query, " AND price <= $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(query, " AND name ILIKE $%d", len(args))
	}
	query.WriteString(orderClause(filter.OrderBy))

	rows, err := r.db.Query(query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductQuery, id))
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}

	if p.Images, err = r.listImages(id); err != nil {
		return Product{}, err
	}
	if p.Specs, err = r.listSpecs(id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByIDs(ids []int) ([]Product, error) {
	rows, err := r.db.Query(getProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// order lines snapshot the cover image
	for i := range products {
		if products[i].Images, err = r.listImages(products[i].ID); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *PostgresRepository) listImages(productID int) ([]Image, error) {
	rows, err := r.db.Query(listImagesQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]Image, 0)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Sort); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *PostgresRepository) listSpecs(productID int) ([]Specification, error) {
	rows, err := r.db.Query(listSpecsQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := make([]Specification, 0)
	for rows.Next() {
		var s Specification
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Name, &s.Value); err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var description sql.NullString
	var createdAt sql.NullString
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &description, &p.Price, &p.Stock, &p.Sales, &p.Rating, &p.IsActive, &createdAt)
	if err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = description.String
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	return p, nil
}

// orderClause maps a client ordering key to a whitelisted ORDER BY.
func orderClause(orderBy string) string {
	switch orderBy {
	case "price":
		return " ORDER BY price, product_id"
	case "-price":
		return " ORDER BY price DESC, product_id"
	case "sales", "-sales":
		return " ORDER BY sales DESC, product_id"
	case "rating", "-rating":
		return " ORDER BY rating DESC, product_id"
	case "created_at", "-created_at":
		return " ORDER BY created_at DESC, product_id"
	default:
		return " ORDER BY product_id"
	}
}
