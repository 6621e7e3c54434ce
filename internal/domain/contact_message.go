package domain

import "time"

// ContactStatus is new until an admin reads the message.
type ContactStatus string

const (
	ContactStatusNew  ContactStatus = "new"
	ContactStatusRead ContactStatus = "read"
)

// ContactMessage is submitted through the public contact form.
type ContactMessage struct {
	ID        string
	FullName  string
	Email     string
	Phone     *string
	Message   string
	Status    ContactStatus
	CreatedAt time.Time
}
