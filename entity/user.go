package entity

const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

type User struct {
	UserID       string `json:"user_id" db:"user_id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
}
