package listing

import "time"

// Status is the listing lifecycle state (persisted as a string).
type Status string

const (
	StatusDraft    Status = "draft"    // being edited, not visible
	StatusPending  Status = "pending"  // submitted, awaiting moderation
	StatusApproved Status = "approved" // live on the marketplace
	StatusRejected Status = "rejected" // moderation rejected, reason set
	StatusSold     Status = "sold"     // sale recorded
	StatusArchived Status = "archived" // withdrawn by the seller
)

// Listing is the vehicle_listings table GORM model.
type Listing struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	SellerID string `gorm:"index;size:36;not null" json:"seller_id"`

	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Make        string `gorm:"index;size:64;not null" json:"make"`
	Model       string `gorm:"index;size:64;not null" json:"model"`
	Year        int    `gorm:"index;not null" json:"year"`
	MileageKM   int    `gorm:"not null;default:0" json:"mileage_km"`

	// money in cents
	PriceCents int64  `gorm:"not null;default:0" json:"price_cents"`
	Currency   string `gorm:"size:8;not null;default:'USD'" json:"currency"`

	City      string `gorm:"index;size:64" json:"city"`
	ImagePath string `gorm:"size:255" json:"image_path,omitempty"`

	Status          Status `gorm:"type:varchar(16);index;not null" json:"status"`
	RejectionReason string `gorm:"size:255" json:"rejection_reason,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
}
