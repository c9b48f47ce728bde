package model

// User is a row of the users table. Users are read-only over HTTP.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
