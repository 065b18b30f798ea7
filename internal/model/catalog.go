package model

import (
	"fmt"
	"time"
)

// DocumentCategory groups documents by subject.
type DocumentCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// StorageLocation is the physical place (room/shelf/box) of a document's paper copy.
type StorageLocation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Room      string    `json:"room"`
	Shelf     string    `json:"shelf"`
	Box       string    `json:"box"`
	CreatedAt time.Time `json:"created_at"`
}

// String renders the location the way it is shown in choice lists.
func (l StorageLocation) String() string {
	return fmt.Sprintf("%s (Room: %s, Shelf: %s)", l.Name, l.Room, l.Shelf)
}
