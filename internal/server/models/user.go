package models

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
