package ssdp

import "fmt"

// RootDeviceNT is the notification target announced once per device tree.
const RootDeviceNT = "upnp:rootdevice"

// OutgoingNotification is one NOTIFY message.
type OutgoingNotification struct {
	NT       string
	USN      string
	Location Location
	Subtype  NotificationSubtype
}

func (m OutgoingNotification) String() string {
	return fmt.Sprintf("%s NT=%s USN=%s LOCATION=%s", m.Subtype.NTS(), m.NT, m.USN, m.Location.URL())
}
