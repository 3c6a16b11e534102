package models

import "time"

// ApprovalStatus defines lifecycle states for listing moderation.
type ApprovalStatus string

const (
	// ApprovalStatusPending indicates the listing is awaiting review.
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusApproved indicates the listing was accepted and is publicly visible.
	ApprovalStatusApproved ApprovalStatus = "approved"
	// ApprovalStatusRejected indicates the listing was declined with a reason.
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Sell status values. Orthogonal to moderation; preserved verbatim through
// transitions like the other content fields.
const (
	SellStatusAvailable = "available"
	SellStatusSold      = "sold"
	SellStatusReserved  = "reserved"
)

// Listing is a seller's item submission, the entity under moderation.
//
// A listing is publicly visible iff ApprovalStatus is approved AND IsActive
// is true. IsActive doubles as the soft-delete flag: an owner or admin can
// set it false in any state, which removes the listing from public queries
// without touching its approval history.
type Listing struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	SellerID uint  `gorm:"not null;index" json:"seller_id"`
	Seller   *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`

	Title         string   `gorm:"size:300;not null" json:"title"`
	Description   string   `gorm:"type:text" json:"description"`
	Brand         string   `gorm:"size:120" json:"brand"`
	Category      string   `gorm:"size:120;index" json:"category"`
	Size          string   `gorm:"size:40" json:"size"`
	Condition     string   `gorm:"size:40" json:"condition"`
	Price         float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *float64 `gorm:"type:decimal(10,2)" json:"original_price,omitempty"`
	Color         string   `gorm:"size:60" json:"color,omitempty"`
	Material      string   `gorm:"size:60" json:"material,omitempty"`
	Style         string   `gorm:"size:60" json:"style,omitempty"`
	Images        []string `gorm:"serializer:json" json:"images"`
	Tags          []string `gorm:"serializer:json" json:"tags,omitempty"`
	Location      string   `gorm:"size:120" json:"location,omitempty"`
	SellStatus    string   `gorm:"size:20;not null;default:'available'" json:"sell_status"`

	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	IsActive       bool           `gorm:"not null;default:false;index" json:"is_active"`
	// AdminNotes is required on rejection, optional on approval, and cleared
	// when the seller resubmits.
	AdminNotes string     `gorm:"type:text" json:"admin_notes,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *uint      `json:"approved_by,omitempty"`

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PubliclyVisible reports whether the listing appears in public storefront
// queries.
func (l *Listing) PubliclyVisible() bool {
	return l.ApprovalStatus == ApprovalStatusApproved && l.IsActive
}
