package notifier

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// DeliveryError reports that a code could not be delivered. Delivery is
// never retried.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notifier: %s delivery failed with status %d", e.Channel, e.StatusCode)
	}
	return fmt.Sprintf("notifier: %s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
