package ssdp

import (
	"net/netip"
	"sync"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

// fakeRouter records the messages it sends.
type fakeRouter struct {
	mu        sync.Mutex
	addresses []NetworkAddress
	// strict routers return nothing when the preferred address matches no
	// address instead of falling back to all of them.
	strict    bool
	preferred []netip.Addr
	sent      []OutgoingNotification
	failAt    int
	failErr   error
	onSend    func(n int)
}

func (r *fakeRouter) ActiveAddresses(preferred netip.Addr) []NetworkAddress {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.preferred = append(r.preferred, preferred)
	if preferred.IsValid() {
		for _, a := range r.addresses {
			if a.Addr == preferred {
				return []NetworkAddress{a}
			}
		}
		if r.strict {
			return nil
		}
	}
	return append([]NetworkAddress(nil), r.addresses...)
}

func (r *fakeRouter) Send(msg OutgoingNotification) error {
	r.mu.Lock()
	attempt := len(r.sent) + 1
	if r.failAt > 0 && attempt == r.failAt {
		r.mu.Unlock()
		return r.failErr
	}
	r.sent = append(r.sent, msg)
	n := len(r.sent)
	onSend := r.onSend
	r.mu.Unlock()

	if onSend != nil {
		onSend(n)
	}
	return nil
}

func (r *fakeRouter) Sent() []OutgoingNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OutgoingNotification(nil), r.sent...)
}

func (r *fakeRouter) Count(subtype NotificationSubtype) int {
	n := 0
	for _, m := range r.Sent() {
		if m.Subtype == subtype {
			n++
		}
	}
	return n
}

type fixedPreference struct {
	addr netip.Addr
	err  error
}

func (p fixedPreference) PreferredAddress() (netip.Addr, error) {
	return p.addr, p.err
}

func testAddresses() []NetworkAddress {
	return []NetworkAddress{
		{Interface: "eth0", Addr: netip.MustParseAddr("10.128.1.252"), Port: 1400},
		{Interface: "eth1", Addr: netip.MustParseAddr("100.119.242.91"), Port: 1400},
	}
}

// newRenderer builds a root MediaRenderer with the given services and
// embedded devices.
func newRenderer(services []string, embedded ...*upnp.Device) *upnp.Device {
	root := upnp.NewDevice("renderer", upnp.MediaRenderer, "uuid:root-0001")
	for _, s := range services {
		if err := root.AddService(upnp.NewService(s)); err != nil {
			panic(err)
		}
	}
	for _, e := range embedded {
		if err := root.AddDevice(e); err != nil {
			panic(err)
		}
	}
	return root
}

func testLocation() Location {
	return Location{Address: testAddresses()[0], Path: "/device/MediaRenderer/root-0001/desc.xml"}
}
