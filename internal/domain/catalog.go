package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents a product category. Categories are seed data and
// read-only through the API.
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Offer represents a supplier-owned catalog entry.
type Offer struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SupplierID  uuid.UUID       `json:"supplierId" db:"supplier_id"`
	CategoryID  uuid.UUID       `json:"categoryId" db:"category_id"`
	Code        string          `json:"code" db:"code"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Width       float64         `json:"width" db:"width"`
	Height      float64         `json:"height" db:"height"`
	Depth       float64         `json:"depth" db:"depth"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// OfferListing is an offer joined with its category name, as returned to
// the owning supplier.
type OfferListing struct {
	Offer
	CategoryName string `json:"categoryName" db:"category_name"`
}

// VisibleOffer is an offer joined with category and supplier profile, as
// returned to an importer with an approved collaboration.
type VisibleOffer struct {
	OfferListing
	SupplierEmail       string  `json:"supplierEmail" db:"supplier_email"`
	SupplierCompanyName *string `json:"supplierCompanyName" db:"supplier_company_name"`
}
