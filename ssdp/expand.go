package ssdp

import "gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"

// Expand returns every message announcing device at location, following
// the advertisement tables of the UPnP Device Architecture:
//
//   - upnp:rootdevice, only when device is a root device;
//   - the UDN and the device type of device, then of each embedded device,
//     depth-first;
//   - the service types declared on device itself.
//
// Services of embedded devices are not announced. The result only depends
// on its arguments.
func Expand(device *upnp.Device, location Location, subtype NotificationSubtype) []OutgoingNotification {
	msgs := ExpandDevice(device, location, subtype)
	for _, embedded := range device.EmbeddedDevices() {
		msgs = append(msgs, ExpandDevice(embedded, location, subtype)...)
	}
	return append(msgs, ExpandServiceTypes(device, location, subtype)...)
}

// ExpandDevice returns the identity messages of a single device.
func ExpandDevice(device *upnp.Device, location Location, subtype NotificationSubtype) []OutgoingNotification {
	msgs := make([]OutgoingNotification, 0, 3)
	udn := device.UDN()

	if device.IsRoot() {
		msgs = append(msgs, OutgoingNotification{
			NT:       RootDeviceNT,
			USN:      udn + "::" + RootDeviceNT,
			Location: location,
			Subtype:  subtype,
		})
	}

	deviceType := device.DeviceType().String()
	return append(msgs,
		OutgoingNotification{
			NT:       udn,
			USN:      udn,
			Location: location,
			Subtype:  subtype,
		},
		OutgoingNotification{
			NT:       deviceType,
			USN:      udn + "::" + deviceType,
			Location: location,
			Subtype:  subtype,
		},
	)
}

// ExpandServiceTypes returns one message per distinct service type declared
// directly on device.
func ExpandServiceTypes(device *upnp.Device, location Location, subtype NotificationSubtype) []OutgoingNotification {
	types := device.ServiceTypes()
	msgs := make([]OutgoingNotification, 0, len(types))
	udn := device.UDN()

	for _, st := range types {
		nt := st.String()
		msgs = append(msgs, OutgoingNotification{
			NT:       nt,
			USN:      udn + "::" + nt,
			Location: location,
			Subtype:  subtype,
		})
	}
	return msgs
}
