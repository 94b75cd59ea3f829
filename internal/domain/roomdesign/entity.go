package roomdesign

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusOpen       Status = "open"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusGenerating, StatusOpen},
	StatusGenerating: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusGenerating, StatusOpen},
	StatusFailed:     {StatusGenerating, StatusOpen},
	StatusOpen:       {StatusAccepted},
	StatusAccepted:   {StatusInProgress},
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const (
	MinPromptLength = 1
	MaxPromptLength = 1000
)

type RoomDesign struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	OriginalImageURL  string    `gorm:"type:text;not null" json:"original_image_url"`
	Prompt            string    `gorm:"type:text;not null" json:"prompt"`
	GeneratedImageURL *string   `gorm:"type:text" json:"generated_image_url,omitempty"`
	Status            Status    `gorm:"size:20;not null;default:pending;index" json:"status"`
	DesignerID        *int64    `gorm:"index" json:"designer_id,omitempty"`
	AcceptedOfferID   *int64    `json:"accepted_offer_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (RoomDesign) TableName() string { return "room_designs" }

// VisibleTo reports whether userID may read the design: its owner, the
// designer it was awarded to, or anyone while it is open for offers.
func (d *RoomDesign) VisibleTo(userID int64) bool {
	if d.UserID == userID || d.Status == StatusOpen {
		return true
	}
	return d.DesignerID != nil && *d.DesignerID == userID
}
