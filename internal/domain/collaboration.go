package domain

import (
	"time"

	"github.com/google/uuid"
)

// Collaboration is an admin-approved (importer, supplier) pairing. The
// pair is unique: at most one collaboration can exist between the same
// importer and supplier.
type Collaboration struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ImporterID uuid.UUID `json:"importerId" db:"importer_id"`
	SupplierID uuid.UUID `json:"supplierId" db:"supplier_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// CollaborationListing is a collaboration joined with both parties'
// email and company name for the admin view.
type CollaborationListing struct {
	Collaboration
	ImporterEmail       string  `json:"importerEmail" db:"importer_email"`
	ImporterCompanyName *string `json:"importerCompanyName" db:"importer_company_name"`
	SupplierEmail       string  `json:"supplierEmail" db:"supplier_email"`
	SupplierCompanyName *string `json:"supplierCompanyName" db:"supplier_company_name"`
}
