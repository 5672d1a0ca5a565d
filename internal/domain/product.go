package domain

import "time"

type ProductCategory string

const (
	CategoryCleaning ProductCategory = "cleaning"
	CategoryOrganic  ProductCategory = "organic"
)

func (c ProductCategory) Valid() bool {
	return c == CategoryCleaning || c == CategoryOrganic
}

type SaleType string

const (
	SaleTypeRetail    SaleType = "retail"
	SaleTypeWholesale SaleType = "wholesale"
)

func (s SaleType) Valid() bool {
	return s == SaleTypeRetail || s == SaleTypeWholesale
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	Category    ProductCategory `json:"category"`
	SaleType    SaleType        `json:"sale_type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
