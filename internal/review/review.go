package review

// Review is a user's rating of a product, 1 to 5 stars.
type Review struct {
	ID        int    `json:"reviewId"`
	ProductID int    `json:"productId"`
	UserID    int    `json:"userId"`
	Rating    int    `json:"rating"`
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
