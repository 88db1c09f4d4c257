package payment

import "time"

// CommissionRule prices the marketplace commission for a partner tier,
// optionally narrowed to a vehicle category.
type CommissionRule struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Tier     string `gorm:"index;size:16;not null" json:"tier"`
	Category string `gorm:"index;size:64" json:"category,omitempty"` // empty = any

	PercentBps   int   `gorm:"not null;default:0" json:"percent_bps"`
	FlatFeeCents int64 `gorm:"not null;default:0" json:"flat_fee_cents"`
	MinCents     int64 `gorm:"not null;default:0" json:"min_cents"` // 0 = no floor
	MaxCents     int64 `gorm:"not null;default:0" json:"max_cents"` // 0 = no cap

	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentStatus is the vendor payment lifecycle state.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentInvoiced PaymentStatus = "invoiced"
	PaymentPaid     PaymentStatus = "paid"
	PaymentWaived   PaymentStatus = "waived"
)

// VendorPayment is a commission owed by a partner for one sale.
type VendorPayment struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	PartnerID string `gorm:"index;size:36;not null" json:"partner_id"`
	ListingID string `gorm:"index;size:36;not null" json:"listing_id"`

	SalePriceCents  int64  `gorm:"not null" json:"sale_price_cents"`
	CommissionCents int64  `gorm:"not null" json:"commission_cents"`
	Currency        string `gorm:"size:8;not null;default:'USD'" json:"currency"`

	Status    PaymentStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
}
