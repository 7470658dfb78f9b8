package order

// Order lifecycle. Transitions only move forward except the cancel edge from
// pending payment.
const (
	StatusPendingPayment  = 0
	StatusPendingShipment = 1
	StatusPendingReceipt  = 2
	StatusCompleted       = 3
	StatusCancelled       = 4
)

// Order is a placed purchase. Amounts are cents; FinalAmount is
// TotalAmount - DiscountAmount + ShippingFee. The receiver fields are a
// snapshot taken at creation, so later address edits do not rewrite history.
type Order struct {
	ID              int    `json:"orderId"`
	OrderNo         string `json:"orderNo"`
	UserID          int    `json:"userId"`
	Status          int    `json:"status"`
	TotalAmount     int64  `json:"totalAmount"`
	DiscountAmount  int64  `json:"discountAmount"`
	ShippingFee     int64  `json:"shippingFee"`
	FinalAmount     int64  `json:"finalAmount"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentNo       string `json:"paymentNo,omitempty"`
	PaymentTime     string `json:"paymentTime,omitempty"`
	Receiver        string `json:"receiver"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverAddress string `json:"receiverAddress"`
	ShippingNo      string `json:"shippingNo,omitempty"`
	ShippingCompany string `json:"shippingCompany,omitempty"`
	CompleteTime    string `json:"completeTime,omitempty"`
	CreatedAt       string `json:"createdAt"`
	UserCouponID    *int   `json:"userCouponId,omitempty"`
	Items           []Item `json:"items,omitempty"`
}

// Item is one order line with the product name, cover image and price
// snapshotted at purchase time.
type Item struct {
	ID           int    `json:"orderItemId"`
	OrderID      int    `json:"orderId"`
	ProductID    int    `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage,omitempty"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
	TotalPrice   int64  `json:"totalPrice"`
}

// ShippingInfo is the subset of an order the tracking endpoint exposes.
type ShippingInfo struct {
	OrderNo         string `json:"orderNo"`
	Status          int    `json:"status"`
	ShippingNo      string `json:"shippingNo,omitempty"`
	ShippingCompany string `json:"shippingCompany,omitempty"`
	Receiver        string `json:"receiver"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverAddress string `json:"receiverAddress"`
}
