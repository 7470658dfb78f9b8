package returns

// Request lifecycle. Pending requests can be approved, rejected or
// cancelled; approved requests complete once the goods are back.
const (
	StatusPending   = 0
	StatusApproved  = 1
	StatusRejected  = 2
	StatusCompleted = 3
	StatusCancelled = 4
)

// Request types.
const (
	TypeRefund   = 1
	TypeExchange = 2
)

// Request asks for a refund or exchange on one product of a completed
// order. Amounts are cents: TotalAmount is the returned line value,
// DiscountShare the part of the order discount it carried, and RefundAmount
// what the customer actually gets back.
type Request struct {
	ID              int     `json:"returnId"`
	ReturnNo        string  `json:"returnNo"`
	OrderID         int     `json:"orderId"`
	UserID          int     `json:"userId"`
	ProductID       int     `json:"productId"`
	Type            int     `json:"type"`
	Reason          string  `json:"reason"`
	Description     string  `json:"description,omitempty"`
	Quantity        int     `json:"quantity"`
	TotalAmount     int64   `json:"totalAmount"`
	DiscountShare   int64   `json:"discountShare"`
	RefundAmount    int64   `json:"refundAmount"`
	Status          int     `json:"status"`
	ShippingNo      string  `json:"shippingNo,omitempty"`
	ShippingCompany string  `json:"shippingCompany,omitempty"`
	ExchangeOrderID *int    `json:"exchangeOrderId,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	Images          []Image `json:"images,omitempty"`
}

// Image is a photo the customer attached, stored by URL.
type Image struct {
	ID       int    `json:"imageId"`
	ReturnID int    `json:"returnId"`
	URL      string `json:"url"`
}

// ProgressStep is one stage in the progress view of a request.
type ProgressStep struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Progress renders the request's lifecycle as ordered steps.
func Progress(r Request) []ProgressStep {
	switch r.Status {
	case StatusCancelled:
		return []ProgressStep{
			{Label: "submitted", Done: true},
			{Label: "cancelled", Done: true},
		}
	case StatusRejected:
		return []ProgressStep{
			{Label: "submitted", Done: true},
			{Label: "reviewed", Done: true},
			{Label: "rejected", Done: true},
		}
	default:
		return []ProgressStep{
			{Label: "submitted", Done: true},
			{Label: "reviewed", Done: r.Status >= StatusApproved},
			{Label: "completed", Done: r.Status == StatusCompleted},
		}
	}
}
