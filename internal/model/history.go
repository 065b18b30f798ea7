package model

import "time"

// HistoryAction tags an audit record.
type HistoryAction string

const (
	ActionCreate HistoryAction = "create"
	ActionUpdate HistoryAction = "update"
	ActionView   HistoryAction = "view"
	ActionDelete HistoryAction = "delete"
)

// HistoryActions lists the audit actions in display order.
var HistoryActions = []HistoryAction{ActionCreate, ActionUpdate, ActionView, ActionDelete}

// Valid reports whether a is a known action.
func (a HistoryAction) Valid() bool {
	for _, known := range HistoryActions {
		if a == known {
			return true
		}
	}
	return false
}

// DocumentHistory is one append-only audit record for a document.
// The timestamp is assigned by the database on insert.
type DocumentHistory struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	UserID     *string       `json:"user_id"`
	Action     HistoryAction `json:"action"`
	Timestamp  time.Time     `json:"timestamp"`
	Details    string        `json:"details"`

	DocumentTitle string `json:"document_title,omitempty"`
	Username      string `json:"username,omitempty"`
}
