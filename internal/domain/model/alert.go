package model

import (
	"github.com/google/uuid"
	"strconv"
	"time"
)

// mapLinkBase is the map URL the coordinates are appended to.
const mapLinkBase = "https://maps.google.com/?q="

// Location is a geographic coordinate pair reported by the user's device.
type Location struct {
	Lat float64
	Lng float64
}

// MapLink renders the location as a maps URL, e.g. https://maps.google.com/?q=1,2.
// Coordinates use the shortest decimal form that round-trips.
func (l Location) MapLink() string {
	return mapLinkBase +
		strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// AlertRequest describes who to notify, what to say and, optionally, where the user is.
type AlertRequest struct {
	Contacts []Contact
	Message  string
	Location *Location
}

// DispatchStatus is the outcome of one per-contact send.
type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"   // The provider accepted the message.
	DispatchFailed DispatchStatus = "failed" // The provider rejected the message.
	DispatchError  DispatchStatus = "error"  // The provider could not be reached or answered garbage.
)

// DispatchResult records what happened for a single contact.
type DispatchResult struct {
	Contact string // Contact display name.
	Status  DispatchStatus
	SID     string // Provider-assigned message id, set when Status is sent.
	Error   string // Failure detail, set when Status is failed or error.
}

// AlertStatus is the lifecycle state of a persisted alert.
type AlertStatus string

const (
	AlertTriggered AlertStatus = "triggered" // Saved, dispatch not finished yet.
	AlertSent      AlertStatus = "sent"      // Every contact was reached.
	AlertPartial   AlertStatus = "partial"   // Some contacts were reached.
	AlertFailed    AlertStatus = "failed"    // No contact was reached.
)

// Alert is the record written for every SOS trigger.
type Alert struct {
	ID        uuid.UUID
	UserID    string
	Message   string
	Location  *Location
	Status    AlertStatus
	Results   []DispatchResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAlert is a factory function for a freshly triggered alert.
func NewAlert(userID, message string, location *Location) *Alert {
	now := time.Now().UTC()
	return &Alert{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Location:  location,
		Status:    AlertTriggered,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete stores the dispatch results and derives the final status from them.
func (a *Alert) Complete(results []DispatchResult) {
	a.Results = results
	a.Status = StatusFromResults(results)
	a.UpdatedAt = time.Now().UTC()
}

// Fail marks an alert whose dispatch never started.
func (a *Alert) Fail() {
	a.Status = AlertFailed
	a.UpdatedAt = time.Now().UTC()
}

// Counts returns how many contacts were reached and how many were not.
func (a *Alert) Counts() (sent, failed int) {
	for _, r := range a.Results {
		if r.Status == DispatchSent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

// StatusFromResults maps per-contact outcomes onto an alert status.
func StatusFromResults(results []DispatchResult) AlertStatus {
	sent := 0
	for _, r := range results {
		if r.Status == DispatchSent {
			sent++
		}
	}
	switch {
	case len(results) > 0 && sent == len(results):
		return AlertSent
	case sent == 0:
		return AlertFailed
	default:
		return AlertPartial
	}
}
