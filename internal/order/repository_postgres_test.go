package order

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func checkoutFixtureOrder() Order {
	couponID := 3
	return Order{
		OrderNo:         "ORDER17000000001234",
		UserID:          7,
		Status:          StatusPendingPayment,
		TotalAmount:     14900,
		DiscountAmount:  500,
		ShippingFee:     1000,
		FinalAmount:     15400,
		PaymentMethod:   "alipay",
		Receiver:        "Jenny",
		ReceiverPhone:   "555",
		ReceiverAddress: "P C D 1 Main St",
		UserCouponID:    &couponID,
		CreatedAt:       "2026-08-31T00:00:00Z",
		Items: []Item{
			{ProductID: 1, ProductName: "Dog Food", ProductImage: "/img/dog-food.jpg", Price: 2500, Quantity: 2, TotalPrice: 5000},
			{ProductID: 2, ProductName: "Cat Tree", Price: 9900, Quantity: 1, TotalPrice: 9900},
		},
	}
}

func TestCreateCommitsWholeCheckout(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock failed: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	o := checkoutFixtureOrder()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(42))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(2))
	mock.ExpectExec("DELETE FROM cart_items").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE user_coupons").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(o, []int{1, 2})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("order id not returned: %+v", created)
	}
	if created.Items[0].OrderID != 42 || created.Items[1].ID != 2 {
		t.Fatalf("item ids not wired: %+v", created.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRollsBackWhenStockRunsOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock failed: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	o := checkoutFixtureOrder()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// second line finds no row with enough stock
	mock.ExpectExec("UPDATE products").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := repo.Create(o, []int{1, 2}); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRollsBackWhenCouponAlreadySpent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock failed: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	o := checkoutFixtureOrder()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(42))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(2))
	mock.ExpectExec("DELETE FROM cart_items").
		WillReturnResult(sqlmock.NewResult(0, 2))
	// the conditional coupon update matches nothing
	mock.ExpectExec("UPDATE user_coupons").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := repo.Create(o, []int{1, 2}); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPayConditionalUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock failed: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders").
		WithArgs("alipay", "PAY-abc", "2026-08-31T00:00:00Z", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Pay(42, "alipay", "PAY-abc", "2026-08-31T00:00:00Z"); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	// already paid: no row matches, status probe reports wrong state
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusPendingShipment))
	if err := repo.Pay(42, "alipay", "PAY-abc", "2026-08-31T00:00:00Z"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
