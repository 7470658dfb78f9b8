package product

// Product is a catalog item. Price is in cents; stock only changes inside
// the order-creation transaction.
type Product struct {
	ID          int             `json:"productId"`
	CategoryID  int             `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       int64           `json:"price"`
	Stock       int             `json:"stock"`
	Sales       int             `json:"sales"`
	Rating      float64         `json:"rating"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	Images      []Image         `json:"images,omitempty"`
	Specs       []Specification `json:"specifications,omitempty"`
}

// Image is a product picture stored by URL. Sort 0 is the cover image.
type Image struct {
	ID        int    `json:"imageId"`
	ProductID int    `json:"productId"`
	URL       string `json:"url"`
	Sort      int    `json:"sort"`
}

// CoverImage returns the URL of the lowest-sort image, or "" when the
// product has none.
func (p Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	cover := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.Sort < cover.Sort {
			cover = img
		}
	}
	return cover.URL
}

// Specification is a display attribute such as "weight: 2kg".
type Specification struct {
	ID        int    `json:"specId"`
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

// Filter narrows and orders a product listing. Prices are in cents.
type Filter struct {
	CategoryID *int
	MinPrice   *int64
	MaxPrice   *int64
	Search     string
	OrderBy    string
}
