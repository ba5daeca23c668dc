// Package notify delivers availability-change events to external
// channels. transports with missing credentials report ErrNotConfigured,
// which callers treat as "skipped", never as a run failure.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("notifier credentials not configured")

// Event is one availability flip for one product.
type Event struct {
	Product   string
	URL       string
	Available bool
	Price     string
	CheckedAt time.Time
}

func (e Event) StatusLabel() string {
	if e.Available {
		return "Available"
	}
	return "Out of Stock"
}

// HTMLMessage renders the telegram-flavored HTML message body.
func (e Event) HTMLMessage() string {
	var b strings.Builder
	b.WriteString("<b>Stock Alert</b>\n\n")
	fmt.Fprintf(&b, "<b>Product:</b> %s\n", e.Product)
	fmt.Fprintf(&b, "<b>URL:</b> %s\n", e.URL)
	fmt.Fprintf(&b, "<b>Status:</b> %s\n", e.StatusLabel())
	if e.Price != "" {
		fmt.Fprintf(&b, "<b>Price:</b> %s\n", e.Price)
	}
	fmt.Fprintf(&b, "<b>Checked at:</b> %s\n", e.CheckedAt.Format("2006-01-02 15:04:05"))
	if e.Available {
		b.WriteString("\nProduct is back in stock. Hurry up!")
	} else {
		b.WriteString("\nProduct is out of stock.")
	}
	return b.String()
}

// EmailBody is the same message with line breaks usable in an HTML email.
func (e Event) EmailBody() string {
	return strings.ReplaceAll(e.HTMLMessage(), "\n", "<br>")
}

type Notifier interface {
	Name() string
	Send(ctx context.Context, e Event) error
}
