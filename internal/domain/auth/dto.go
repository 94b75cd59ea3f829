package auth

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Role     Role   `json:"role" validate:"omitempty,oneof=customer designer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=customer designer"`
}

type UpdateProfileRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	City      *string `json:"city" validate:"omitempty,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// Session is the authenticated user's own view of their account.
type Session struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	Role    Role     `json:"role,omitempty"`
}

type AuthResult struct {
	Session
	Token string `json:"token"`
}

type RoleResult struct {
	Role            Role   `json:"role"`
	AlreadyAssigned bool   `json:"already_assigned"`
	Token           string `json:"token"`
}
