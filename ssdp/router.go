package ssdp

import (
	"fmt"
	"net/netip"
)

// Router is the transport the dispatcher sends through. Implementations
// must be safe for concurrent use.
type Router interface {
	// ActiveAddresses lists the local addresses with an active stream
	// server. A valid preferred address matching one of them restricts the
	// result to it.
	ActiveAddresses(preferred netip.Addr) []NetworkAddress

	Send(msg OutgoingNotification) error
}

// SendError reports the message the router failed to send.
type SendError struct {
	Message OutgoingNotification
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sending %s (USN %s) from %s: %v",
		e.Message.Subtype.NTS(), e.Message.USN, e.Message.Location.Address, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
