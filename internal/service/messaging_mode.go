package service

import "time"

// FreeWindow is how long after the customer's last message free-form text may be sent.
const FreeWindow = 24 * time.Hour

// IsOutsideFreeWindow reports whether only templates may be sent. A conversation
// where the customer never wrote is outside the window.
func IsOutsideFreeWindow(lastCustomerMessage *time.Time, now time.Time, window time.Duration) bool {
	if lastCustomerMessage == nil {
		return true
	}
	if window <= 0 {
		window = FreeWindow
	}
	return now.Sub(*lastCustomerMessage) > window
}

func messagingMode(lastCustomerMessage *time.Time, now time.Time, window time.Duration) *MessagingMode {
	if window <= 0 {
		window = FreeWindow
	}

	outside := IsOutsideFreeWindow(lastCustomerMessage, now, window)
	mode := &MessagingMode{
		OutsideWindow:         outside,
		TemplateRequired:      outside,
		LastCustomerMessageAt: lastCustomerMessage,
	}
	if lastCustomerMessage != nil {
		expires := lastCustomerMessage.Add(window)
		mode.WindowExpiresAt = &expires
	}
	return mode
}
