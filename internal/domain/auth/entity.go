package auth

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDesigner Role = "designer"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleDesigner
}

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Profile struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     *string   `gorm:"size:20" json:"phone,omitempty"`
	City      *string   `gorm:"size:50" json:"city,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// UserRole holds the single role a user picked. user_id is unique.
type UserRole struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }

// PublicProfile is what other users may see about someone.
type PublicProfile struct {
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
