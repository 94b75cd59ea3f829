package offer

import "time"

type Status string

const (
	StatusPending      Status = "pending"
	StatusCounterOffer Status = "counter_offer"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
)

// IsLive reports whether the offer still counts as the designer's bid.
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusCounterOffer || s == StatusAccepted
}

type Action string

const (
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionCounter       Action = "counter"
	ActionAcceptCounter Action = "accept_counter"
	ActionChat          Action = "chat"
)

// Actions lists what the parties may do with an offer in status s.
// Chat stays available in every status.
func Actions(s Status) []Action {
	switch s {
	case StatusPending:
		return []Action{ActionAccept, ActionReject, ActionCounter, ActionChat}
	case StatusCounterOffer:
		return []Action{ActionAcceptCounter, ActionReject, ActionChat}
	default:
		return []Action{ActionChat}
	}
}

type Offer struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	RoomDesignID         int64      `gorm:"not null;index" json:"room_design_id"`
	DesignerID           int64      `gorm:"not null;index" json:"designer_id"`
	Price                float64    `gorm:"not null" json:"price"`
	EstimatedDays        *int       `json:"estimated_days,omitempty"`
	Message              *string    `gorm:"type:text" json:"message,omitempty"`
	Status               Status     `gorm:"size:20;not null;default:pending;index" json:"status"`
	CounterPrice         *float64   `json:"counter_price,omitempty"`
	CounterMessage       *string    `gorm:"type:text" json:"counter_message,omitempty"`
	CounterEstimatedDays *int       `json:"counter_estimated_days,omitempty"`
	CounterCreatedAt     *time.Time `json:"counter_created_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Offer) TableName() string { return "design_offers" }

// counterMerge returns the columns written when a counter-offer is
// accepted. Counter fields that were never set keep the original terms.
func (o *Offer) counterMerge() map[string]any {
	fields := map[string]any{}
	if o.CounterPrice != nil {
		fields["price"] = *o.CounterPrice
	}
	if o.CounterEstimatedDays != nil {
		fields["estimated_days"] = *o.CounterEstimatedDays
	}
	return fields
}

// applyCounterMerge mirrors counterMerge on the in-memory offer.
func (o *Offer) applyCounterMerge() {
	if o.CounterPrice != nil {
		o.Price = *o.CounterPrice
	}
	if o.CounterEstimatedDays != nil {
		days := *o.CounterEstimatedDays
		o.EstimatedDays = &days
	}
}

// View is an offer as returned to clients.
type View struct {
	Offer
	Actions      []Action `json:"actions"`
	DesignerName string   `json:"designer_name"`
	BusinessName *string  `json:"business_name,omitempty"`
	AvatarURL    *string  `json:"designer_avatar_url,omitempty"`
	Rating       float64  `json:"designer_rating"`
	ReviewCount  int      `json:"designer_review_count"`
}

func newView(o Offer) View {
	return View{Offer: o, Actions: Actions(o.Status)}
}
