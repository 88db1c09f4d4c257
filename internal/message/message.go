package message

import "time"

// Inquiry is a buyer question to a seller about a live listing.
type Inquiry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ListingID string    `gorm:"index;size:36;not null" json:"listing_id"`
	SenderID  string    `gorm:"index;size:36;not null" json:"sender_id"`
	SellerID  string    `gorm:"index;size:36;not null" json:"seller_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AdminMessage is a moderator notice delivered to a single account.
type AdminMessage struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID    string    `gorm:"size:36;not null" json:"sender_id"`
	RecipientID string    `gorm:"index;size:36;not null" json:"recipient_id"`
	Subject     string    `gorm:"size:255;not null" json:"subject"`
	Body        string    `gorm:"type:text" json:"body"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
