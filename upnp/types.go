package upnp

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultNamespace is the UPnP Forum schema namespace.
const DefaultNamespace = "schemas-upnp-org"

// DeviceType identifies a kind of device, rendered as
// urn:<namespace>:device:<name>:<version>.
type DeviceType struct {
	Namespace string
	Name      string
	Version   int
}

// Standard device types used by pmossdp.
var (
	MediaServer   = DeviceType{Namespace: DefaultNamespace, Name: "MediaServer", Version: 1}
	MediaRenderer = DeviceType{Namespace: DefaultNamespace, Name: "MediaRenderer", Version: 1}
)

func (t DeviceType) String() string {
	return formatURN(t.Namespace, "device", t.Name, t.Version)
}

// ServiceType identifies a kind of service, rendered as
// urn:<namespace>:service:<name>:<version>.
type ServiceType struct {
	Namespace string
	Name      string
	Version   int
}

func (t ServiceType) String() string {
	return formatURN(t.Namespace, "service", t.Name, t.Version)
}

// ServiceID returns the urn:upnp-org:serviceId:<name> identifier.
func (t ServiceType) ServiceID() string {
	ns := t.Namespace
	if ns == "" || ns == DefaultNamespace {
		ns = "upnp-org"
	}
	return fmt.Sprintf("urn:%s:serviceId:%s", ns, t.Name)
}

func formatURN(namespace, kind, name string, version int) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if version < 1 {
		version = 1
	}
	return fmt.Sprintf("urn:%s:%s:%s:%d", namespace, kind, name, version)
}

// ParseDeviceType parses urn:<namespace>:device:<name>:<version>.
func ParseDeviceType(s string) (DeviceType, error) {
	ns, name, version, err := parseURN(s, "device")
	if err != nil {
		return DeviceType{}, err
	}
	return DeviceType{Namespace: ns, Name: name, Version: version}, nil
}

// ParseServiceType parses urn:<namespace>:service:<name>:<version>.
func ParseServiceType(s string) (ServiceType, error) {
	ns, name, version, err := parseURN(s, "service")
	if err != nil {
		return ServiceType{}, err
	}
	return ServiceType{Namespace: ns, Name: name, Version: version}, nil
}

func parseURN(s, kind string) (string, string, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 5 || parts[0] != "urn" || parts[2] != kind {
		return "", "", 0, fmt.Errorf("invalid %s type %q", kind, s)
	}
	version, err := strconv.Atoi(parts[4])
	if err != nil || version < 1 {
		return "", "", 0, fmt.Errorf("invalid %s type version in %q", kind, s)
	}
	if parts[1] == "" || parts[3] == "" {
		return "", "", 0, fmt.Errorf("invalid %s type %q", kind, s)
	}
	return parts[1], parts[3], version, nil
}
