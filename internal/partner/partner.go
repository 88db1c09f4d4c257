package partner

import "time"

// Tier is the commercial tier of a business partner.
type Tier string

const (
	TierStandard Tier = "standard"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
)

// ValidTier reports whether t is a known tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierStandard, TierSilver, TierGold:
		return true
	}
	return false
}

// BusinessPartner is the business_partners table GORM model. A row exists
// only for approved vendors.
type BusinessPartner struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerUserID  string    `gorm:"uniqueIndex;size:36;not null" json:"owner_user_id"`
	BusinessName string    `gorm:"size:255;not null" json:"business_name"`
	TaxID        string    `gorm:"size:64" json:"tax_id"`
	Tier         Tier      `gorm:"type:varchar(16);not null;default:'standard'" json:"tier"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ApplicationStatus is the vendor application workflow state.
type ApplicationStatus string

const (
	AppSubmitted   ApplicationStatus = "submitted"
	AppUnderReview ApplicationStatus = "under_review"
	AppApproved    ApplicationStatus = "approved"
	AppRejected    ApplicationStatus = "rejected"
)

// AllowTransition lists the legal application moves. Decisions are final.
var AllowTransition = map[ApplicationStatus][]ApplicationStatus{
	AppSubmitted:   {AppUnderReview},
	AppUnderReview: {AppApproved, AppRejected},
	AppApproved:    {},
	AppRejected:    {},
}

// CanTransition reports whether from → to is legal.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range AllowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Open reports whether the application still awaits a decision.
func (s ApplicationStatus) Open() bool {
	return s == AppSubmitted || s == AppUnderReview
}

// VendorApplication is the vendor_applications table GORM model.
type VendorApplication struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	ApplicantID  string            `gorm:"index;size:36;not null" json:"applicant_id"`
	BusinessName string            `gorm:"size:255;not null" json:"business_name"`
	TaxID        string            `gorm:"size:64" json:"tax_id"`
	Message      string            `gorm:"type:text" json:"message,omitempty"`
	Status       ApplicationStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	ReviewerID   string            `gorm:"size:36" json:"reviewer_id,omitempty"`
	DecisionNote string            `gorm:"size:255" json:"decision_note,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
}
