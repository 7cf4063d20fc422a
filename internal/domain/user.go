package domain

import "time"

// User represents a marketplace participant (owner or passenger).
type User struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
