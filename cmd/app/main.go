package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mallgo/mall-backend/internal/address"
	"github.com/mallgo/mall-backend/internal/cart"
	"github.com/mallgo/mall-backend/internal/category"
	"github.com/mallgo/mall-backend/internal/config"
	"github.com/mallgo/mall-backend/internal/coupon"
	"github.com/mallgo/mall-backend/internal/order"
	"github.com/mallgo/mall-backend/internal/product"
	"github.com/mallgo/mall-backend/internal/returns"
	"github.com/mallgo/mall-backend/internal/review"
	"github.com/mallgo/mall-backend/internal/user"
	"github.com/mallgo/mall-backend/internal/verify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLog)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	verifyService := verify.NewService(rdb, verify.LogMailer{})

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, verifyService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)

	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)))
	reviewHandler := review.NewHandler(review.NewService(review.NewPostgresRepository(db), productService))

	addressService := address.NewService(address.NewPostgresRepository(db))
	addressHandler := address.NewHandler(addressService)

	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	cartHandler := cart.NewHandler(cartService)

	couponService := coupon.NewService(coupon.NewPostgresRepository(db))
	couponHandler := coupon.NewHandler(couponService)

	orderService := order.NewService(order.NewPostgresRepository(db), productService, cartService, addressService, couponService)
	orderHandler := order.NewHandler(orderService)

	returnsHandler := returns.NewHandler(returns.NewService(returns.NewPostgresRepository(db), orderService))

	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterPublicRoutes(app)
	couponHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	couponHandler.RegisterProtectedRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	returnsHandler.RegisterProtectedRoutes(app)

	if err := app.Listen(cfg.Addr); err != nil {
		panic(err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	fmt.Printf("%s %s -> %d (%v)\n", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// ensureSchema creates all tables and the unique indexes the repositories
// rely on for upserts and conflict detection.
func ensureSchema(db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			receiver TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			province TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			district TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			category_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			parent_id INT,
			level INT NOT NULL DEFAULT 1,
			sort INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			category_id INT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			sales INT NOT NULL DEFAULT 0,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS product_images (
			image_id SERIAL PRIMARY KEY,
			product_id INT NOT NULL,
			url TEXT NOT NULL,
			sort INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS product_specs (
			spec_id SERIAL PRIMARY KEY,
			product_id INT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS product_reviews (
			review_id SERIAL PRIMARY KEY,
			product_id INT NOT NULL,
			user_id INT NOT NULL,
			rating INT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			cart_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS carts_user_key ON carts (user_id)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			item_id SERIAL PRIMARY KEY,
			cart_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			selected BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_product_key ON cart_items (cart_id, product_id)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			coupon_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			type INT NOT NULL,
			amount BIGINT NOT NULL,
			min_amount BIGINT NOT NULL DEFAULT 0,
			start_time TEXT NOT NULL DEFAULT '',
			end_time TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_coupons (
			user_coupon_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			coupon_id INT NOT NULL,
			status INT NOT NULL DEFAULT 0,
			claimed_at TEXT NOT NULL DEFAULT '',
			used_at TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS user_coupons_claim_key ON user_coupons (user_id, coupon_id)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			order_no TEXT NOT NULL,
			user_id INT NOT NULL,
			status INT NOT NULL DEFAULT 0,
			total_amount BIGINT NOT NULL,
			discount_amount BIGINT NOT NULL DEFAULT 0,
			shipping_fee BIGINT NOT NULL DEFAULT 0,
			final_amount BIGINT NOT NULL,
			payment_method TEXT NOT NULL DEFAULT '',
			payment_no TEXT,
			payment_time TEXT,
			receiver TEXT NOT NULL DEFAULT '',
			receiver_phone TEXT NOT NULL DEFAULT '',
			receiver_address TEXT NOT NULL DEFAULT '',
			shipping_no TEXT,
			shipping_company TEXT,
			complete_time TEXT,
			user_coupon_id INT,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_item_id SERIAL PRIMARY KEY,
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			product_name TEXT NOT NULL,
			product_image TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL,
			quantity INT NOT NULL,
			total_price BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS return_requests (
			return_id SERIAL PRIMARY KEY,
			return_no TEXT NOT NULL,
			order_id INT NOT NULL,
			user_id INT NOT NULL,
			product_id INT NOT NULL,
			type INT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			quantity INT NOT NULL,
			total_amount BIGINT NOT NULL,
			discount_share BIGINT NOT NULL DEFAULT 0,
			refund_amount BIGINT NOT NULL,
			status INT NOT NULL DEFAULT 0,
			shipping_no TEXT,
			shipping_company TEXT,
			exchange_order_id INT,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS return_requests_order_product_key ON return_requests (order_id, product_id)`,
		`CREATE TABLE IF NOT EXISTS return_images (
			return_image_id SERIAL PRIMARY KEY,
			return_id INT NOT NULL,
			url TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
