package model

import (
	"github.com/google/uuid"
	"strings"
	"time"
)

// Contact is a person the user wants alerted in an emergency.
// Phone is free-form and passed to the SMS provider as stored.
type Contact struct {
	ID           uuid.UUID
	UserID       string
	Name         string
	Phone        string
	Relationship string // Optional label such as "Mother" or "Friend".
	CreatedAt    time.Time
}

// NewContact is a factory function for a contact owned by userID.
func NewContact(userID, name, phone, relationship string) *Contact {
	return &Contact{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Relationship: strings.TrimSpace(relationship),
		CreatedAt:    time.Now().UTC(),
	}
}

// Profile holds the per-user settings consulted when an SOS is triggered.
type Profile struct {
	UserID       string
	DisplayName  string
	AlertMessage string // Custom SOS text; empty means the service default.
	UpdatedAt    time.Time
}
