package servicerequest

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PropertyType string

const (
	PropertyApartment  PropertyType = "apartment"
	PropertyVilla      PropertyType = "villa"
	PropertyCommercial PropertyType = "commercial"
)

// party is who may perform a transition.
type party int

const (
	byCustomer party = iota + 1
	byDesigner
)

// transitions lists every legal edge. Rejected, completed and cancelled are
// terminal.
var transitions = map[Status]map[Status]party{
	StatusPending: {
		StatusAccepted:  byDesigner,
		StatusRejected:  byDesigner,
		StatusCancelled: byCustomer,
	},
	StatusAccepted: {
		StatusCompleted: byDesigner,
	},
}

func allowedBy(from, to Status) (party, bool) {
	p, ok := transitions[from][to]
	return p, ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type ServiceRequest struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	CustomerID   int64        `gorm:"not null;index" json:"customer_id"`
	DesignerID   int64        `gorm:"not null;index" json:"designer_id"`
	PropertyType PropertyType `gorm:"size:20;not null" json:"property_type"`
	City         string       `gorm:"size:50;not null" json:"city"`
	Budget       float64      `gorm:"not null" json:"budget"`
	Description  *string      `gorm:"type:text" json:"description,omitempty"`
	Status       Status       `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (ServiceRequest) TableName() string { return "service_requests" }
