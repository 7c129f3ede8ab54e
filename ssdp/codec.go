package ssdp

import (
	"fmt"
	"net"
	"runtime"
	"strings"
)

const (
	SsdpAddr = "239.255.255.250"
	Port     = 1900
	MaxAge   = 1800
)

// MulticastAddr is the SSDP IPv4 multicast group.
var MulticastAddr = &net.UDPAddr{IP: net.ParseIP(SsdpAddr), Port: Port}

// Headers holds the values of a NOTIFY that do not come from the message.
type Headers struct {
	Server string
	MaxAge int

	// BootID and ConfigID are sent as BOOTID.UPNP.ORG and
	// CONFIGID.UPNP.ORG when BootID is not zero.
	BootID   uint32
	ConfigID uint32
}

// DefaultHeaders returns the headers used when none are configured.
func DefaultHeaders() Headers {
	return Headers{
		Server: DefaultServer(),
		MaxAge: MaxAge,
	}
}

// DefaultServer is the SERVER header: OS/version UPnP/1.1 product/version.
func DefaultServer() string {
	return fmt.Sprintf("%s/%s UPnP/1.1 PMOSSDP/1.0", runtime.GOOS, runtime.GOARCH)
}

// Encode renders msg as a NOTIFY request with CRLF line endings.
func Encode(msg OutgoingNotification, h Headers) []byte {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	line("NOTIFY * HTTP/1.1")
	line("HOST: %s:%d", SsdpAddr, Port)

	switch msg.Subtype {
	case Alive:
		maxAge := h.MaxAge
		if maxAge <= 0 {
			maxAge = MaxAge
		}
		line("CACHE-CONTROL: max-age=%d", maxAge)
		line("LOCATION: %s", msg.Location.URL())
		line("NT: %s", msg.NT)
		line("NTS: %s", msg.Subtype.NTS())
		line("SERVER: %s", h.Server)
		line("USN: %s", msg.USN)
	case Update:
		line("LOCATION: %s", msg.Location.URL())
		line("NT: %s", msg.NT)
		line("NTS: %s", msg.Subtype.NTS())
		line("USN: %s", msg.USN)
		if h.BootID != 0 {
			line("NEXTBOOTID.UPNP.ORG: %d", h.BootID+1)
		}
	default:
		line("NT: %s", msg.NT)
		line("NTS: %s", msg.Subtype.NTS())
		line("USN: %s", msg.USN)
	}

	if h.BootID != 0 {
		line("BOOTID.UPNP.ORG: %d", h.BootID)
		line("CONFIGID.UPNP.ORG: %d", h.ConfigID)
	}

	b.WriteString("\r\n")
	return []byte(b.String())
}
