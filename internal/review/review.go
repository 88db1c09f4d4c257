package review

import "time"

// TargetType says what a review is about.
type TargetType string

const (
	TargetListing TargetType = "listing"
	TargetVehicle TargetType = "vehicle"
	TargetDealer  TargetType = "dealer"
	TargetSeller  TargetType = "seller"
)

// ValidTarget reports whether t is a known target type.
func ValidTarget(t TargetType) bool {
	switch t {
	case TargetListing, TargetVehicle, TargetDealer, TargetSeller:
		return true
	}
	return false
}

// Status is the moderation outcome of a review.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Review is the reviews table GORM model. One table covers listing,
// vehicle, dealer and seller reviews, discriminated by TargetType.
type Review struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	TargetType TargetType `gorm:"index:idx_target;type:varchar(16);not null" json:"target_type"`
	TargetID   string     `gorm:"index:idx_target;size:36;not null" json:"target_id"`
	AuthorID   string     `gorm:"index;size:36;not null" json:"author_id"`

	Title   string `gorm:"size:255" json:"title"`
	Content string `gorm:"type:text" json:"content"`
	Pros    string `gorm:"type:text" json:"pros,omitempty"`
	Cons    string `gorm:"type:text" json:"cons,omitempty"`
	Rating  int    `gorm:"not null" json:"rating"`

	Status          Status `gorm:"type:varchar(16);index;not null" json:"status"`
	ModerationScore int    `gorm:"not null;default:0" json:"moderation_score"`
	Flags           string `gorm:"size:512" json:"flags,omitempty"` // comma-joined

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
