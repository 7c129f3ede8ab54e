package ssdp

import "fmt"

// NotificationSubtype is the intent carried by every NOTIFY of a dispatch,
// sent as the NTS header.
type NotificationSubtype int

const (
	Alive NotificationSubtype = iota
	ByeBye
	Update
)

func (s NotificationSubtype) NTS() string {
	switch s {
	case Alive:
		return "ssdp:alive"
	case ByeBye:
		return "ssdp:byebye"
	case Update:
		return "ssdp:update"
	default:
		return fmt.Sprintf("ssdp:unknown(%d)", int(s))
	}
}

func (s NotificationSubtype) String() string {
	switch s {
	case Alive:
		return "alive"
	case ByeBye:
		return "byebye"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("NotificationSubtype(%d)", int(s))
	}
}

// ParseNotificationSubtype accepts either the NTS value or the short name.
func ParseNotificationSubtype(s string) (NotificationSubtype, error) {
	switch s {
	case "ssdp:alive", "alive":
		return Alive, nil
	case "ssdp:byebye", "byebye":
		return ByeBye, nil
	case "ssdp:update", "update":
		return Update, nil
	}
	return 0, fmt.Errorf("unknown notification subtype %q", s)
}
