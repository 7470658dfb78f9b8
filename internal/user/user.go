package user

// User is an account holder. Passwords are stored bcrypt-hashed and blanked
// before the struct leaves the API.
type User struct {
	ID        int    `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
