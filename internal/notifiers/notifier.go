package notifiers

import (
	"context"
	"fmt"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"strings"
)

// Notifier defines the interface for any operator channel an SOS is mirrored to.
type Notifier interface {
	// Notify delivers a summary of the alert event.
	Notify(ctx context.Context, e *model.AlertEvent) error
}

// Subject returns the one-line headline for an alert event.
func Subject(e *model.AlertEvent) string {
	return fmt.Sprintf("SOS from %s (%s)", e.Who(), e.Status)
}

// Summary renders the plain-text body shared by every channel.
func Summary(e *model.AlertEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", e.Who())
	fmt.Fprintf(&b, "Message: %s\n", e.Message)
	if e.Location != nil {
		fmt.Fprintf(&b, "Location: %s\n", e.Location.MapLink())
	} else {
		b.WriteString("Location: unknown\n")
	}
	fmt.Fprintf(&b, "Contacts reached: %d of %d\n", e.Sent, e.Sent+e.Failed)
	fmt.Fprintf(&b, "Alert: %s at %s", e.AlertID, e.OccurredAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
