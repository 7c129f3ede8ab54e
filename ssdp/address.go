package ssdp

import (
	"net/netip"
	"strconv"

	log "github.com/sirupsen/logrus"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/netutils"
)

// NetworkAddress is a local address with a stream server listening on Port.
type NetworkAddress struct {
	Interface string
	Addr      netip.Addr
	Port      int
}

func (a NetworkAddress) String() string {
	hp := netip.AddrPortFrom(a.Addr, uint16(a.Port)).String()
	if a.Interface == "" {
		return hp
	}
	return a.Interface + "/" + hp
}

// HostPort renders the address as used in a URL authority.
func (a NetworkAddress) HostPort() string {
	if a.Addr.Is6() && !a.Addr.Is4In6() {
		return "[" + a.Addr.WithZone("").String() + "]:" + strconv.Itoa(a.Port)
	}
	return a.Addr.Unmap().String() + ":" + strconv.Itoa(a.Port)
}

// PreferredAddressProvider guesses which local address should be used on
// multi-homed hosts. The zero netip.Addr means no preference.
type PreferredAddressProvider interface {
	PreferredAddress() (netip.Addr, error)
}

// NoPreference never prefers an address.
type NoPreference struct{}

func (NoPreference) PreferredAddress() (netip.Addr, error) {
	return netip.Addr{}, nil
}

// InterfaceAddressProvider prefers the first non-loopback address bound on
// the host.
type InterfaceAddressProvider struct {
	// List defaults to netutils.ListInterfaceAddrs.
	List func() ([]netutils.InterfaceAddr, error)
}

func (p InterfaceAddressProvider) PreferredAddress() (netip.Addr, error) {
	list := p.List
	if list == nil {
		list = netutils.ListInterfaceAddrs
	}
	addrs, err := list()
	if err != nil {
		return netip.Addr{}, err
	}
	return netutils.FirstNonLoopback(addrs)
}

// AddressSelector picks the local addresses an advertisement is sent from.
type AddressSelector struct {
	router Router
	log    *log.Entry
}

func NewAddressSelector(router Router, logger *log.Entry) *AddressSelector {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &AddressSelector{router: router, log: logger}
}

// SelectActiveAddresses returns the addresses with an active stream server.
// A preferred address that matches nothing never narrows the result: the
// router is asked again without preference. An empty result means the
// network is currently unavailable.
func (s *AddressSelector) SelectActiveAddresses(preferred netip.Addr) []NetworkAddress {
	addrs := s.router.ActiveAddresses(preferred)
	if len(addrs) > 0 || !preferred.IsValid() {
		return addrs
	}

	s.log.Debugf("no active stream server on preferred address %s, using all addresses", preferred)
	return s.router.ActiveAddresses(netip.Addr{})
}
