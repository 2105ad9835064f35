package models

// Dimensions of a product in centimetres
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Review is a single customer review attached to a product
type Review struct {
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail"`
}

// Product represents a catalog record
type Product struct {
	ID                   int        `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"` // category slug
	Price                float64    `json:"price"`
	DiscountPercentage   float64    `json:"discountPercentage"`
	Rating               float64    `json:"rating"`
	Stock                int        `json:"stock"`
	Brand                string     `json:"brand,omitempty"` // absent on some groceries
	SKU                  string     `json:"sku,omitempty"`
	Tags                 []string   `json:"tags,omitempty"`
	Weight               float64    `json:"weight,omitempty"`
	Dimensions           Dimensions `json:"dimensions"`
	WarrantyInformation  string     `json:"warrantyInformation,omitempty"`
	ShippingInformation  string     `json:"shippingInformation,omitempty"`
	AvailabilityStatus   string     `json:"availabilityStatus,omitempty"`
	ReturnPolicy         string     `json:"returnPolicy,omitempty"`
	MinimumOrderQuantity int        `json:"minimumOrderQuantity,omitempty"`
	Reviews              []Review   `json:"reviews,omitempty"`
	Thumbnail            string     `json:"thumbnail"`
	Images               []string   `json:"images"`
}

// DiscountedPrice applies DiscountPercentage to Price
func (p Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.DiscountPercentage/100)
}

// ProductsResponse is one page of products
type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}
