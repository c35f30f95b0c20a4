package models

// AdminProfile is the public part of an admin account returned at login.
type AdminProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse is returned by a successful panel login.
type LoginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      AdminProfile `json:"user"`
}
