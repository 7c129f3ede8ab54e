package netutils

import (
	"errors"
	"net"
	"net/netip"
)

var ErrNoAddress = errors.New("no suitable local address found")

// InterfaceAddr is one address bound to a local network interface.
type InterfaceAddr struct {
	Interface string
	Index     int
	Flags     net.Flags
	Addr      netip.Addr
}

func (a InterfaceAddr) IsLoopback() bool {
	return a.Addr.IsLoopback() || a.Flags&net.FlagLoopback != 0
}

func (a InterfaceAddr) IsMulticast() bool {
	return a.Flags&net.FlagMulticast != 0
}

// ListInterfaceAddrs returns the addresses of every interface that is up,
// in the order the system reports them. Interfaces whose addresses cannot
// be read are skipped.
func ListInterfaceAddrs() ([]InterfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var result []InterfaceAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue // Ignore down interfaces
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			a, ok := netip.AddrFromSlice(ip)
			if !ok {
				continue
			}

			result = append(result, InterfaceAddr{
				Interface: iface.Name,
				Index:     iface.Index,
				Flags:     iface.Flags,
				Addr:      a.Unmap(),
			})
		}
	}

	return result, nil
}

// FirstNonLoopback returns the first address that is not a loopback one.
func FirstNonLoopback(addrs []InterfaceAddr) (netip.Addr, error) {
	for _, a := range addrs {
		if !a.IsLoopback() && !a.Addr.IsUnspecified() {
			return a.Addr, nil
		}
	}
	return netip.Addr{}, ErrNoAddress
}

// MulticastIPv4 keeps the non-loopback IPv4 addresses of
// multicast-capable interfaces, link-local ones excluded.
func MulticastIPv4(addrs []InterfaceAddr) []InterfaceAddr {
	var out []InterfaceAddr
	for _, a := range addrs {
		if !a.Addr.Is4() || a.IsLoopback() || !a.IsMulticast() {
			continue
		}
		if a.Addr.IsLinkLocalUnicast() || a.Addr.IsUnspecified() {
			continue
		}
		out = append(out, a)
	}
	return out
}
