package notification

import "time"

// Kind tags what produced a notification.
type Kind string

const (
	KindListingApproved     Kind = "listing_approved"
	KindListingRejected     Kind = "listing_rejected"
	KindApplicationDecision Kind = "application_decision"
	KindInquiryReceived     Kind = "inquiry_received"
	KindPaymentRecorded     Kind = "payment_recorded"
	KindReviewRejected      Kind = "review_rejected"
	KindAdminNotice         Kind = "admin_notice"
)

// Notification is the notifications table GORM model.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"`
	Kind      Kind      `gorm:"type:varchar(32);not null" json:"kind"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
