// Package notes is the domain layer: the Note entity and a Store that maps
// note operations onto single item-level calls against the managed table.
package notes

import (
	"time"

	"github.com/google/uuid"
)

// Note is a user-created record. ID is the partition key value and UserID the
// sort key value on tables configured with one; their attribute names vary by
// table, so the Store fills them in by hand rather than through tags.
type Note struct {
	ID        string `dynamodbav:"-" json:"id"`
	UserID    string `dynamodbav:"-" json:"user_id,omitempty"`
	Title     string `dynamodbav:"title" json:"title"`
	Content   string `dynamodbav:"content" json:"content"`
	CreatedAt string `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at" json:"updated_at"`
}

// NewID returns a fresh random note id.
func NewID() string {
	return uuid.NewString()
}

// nowISO is a UTC timestamp at second precision, e.g. 2026-08-26T09:30:00Z.
func nowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
