package address

// Address is a user shipping address. At most one address per user carries
// the default flag.
type Address struct {
	ID        int    `json:"addressId"`
	UserID    int    `json:"userId"`
	Receiver  string `json:"receiver"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	City      string `json:"city"`
	District  string `json:"district"`
	Detail    string `json:"detail"`
	IsDefault bool   `json:"isDefault"`
}
