package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// AuditActionCurrent tags the log entry describing the request as it is now.
const AuditActionCurrent = "CURRENT"

// Actor is who made a change. The backend sends either a plain name or a user object.
type Actor struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts a string, an object with id/username/name, or null.
func (a *Actor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Actor{}
		return nil
	}
	if b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*a = Actor{Name: name}
		return nil
	}
	var obj struct {
		ID       ID     `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	name := obj.Name
	if name == "" {
		name = obj.Username
	}
	*a = Actor{ID: obj.ID, Name: name}
	return nil
}

// ItemChange describes what changed on one request item.
type ItemChange struct {
	ItemID     ID                         `json:"item_id"`
	ChangeType string                     `json:"change_type"`
	Changes    map[string]json.RawMessage `json:"changes"`
}

// AuditLogEntry is one snapshot in a request's audit log.
type AuditLogEntry struct {
	ID          ID                         `json:"id,omitempty"`
	Action      string                     `json:"action"`
	ChangedBy   Actor                      `json:"changed_by"`
	ChangedAt   time.Time                  `json:"changed_at"`
	MainChanges map[string]json.RawMessage `json:"main_changes"`
	ItemChanges []ItemChange               `json:"item_changes"`
}

// IsCurrent reports whether the entry is the CURRENT snapshot.
func (e AuditLogEntry) IsCurrent() bool {
	return e.Action == AuditActionCurrent
}

// SortAuditLog orders entries with CURRENT first and the rest by changed_at
// descending. The input slice is not modified.
func SortAuditLog(entries []AuditLogEntry) []AuditLogEntry {
	out := append([]AuditLogEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].IsCurrent(), out[j].IsCurrent()
		if ci != cj {
			return ci
		}
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out
}
