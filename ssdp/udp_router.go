package ssdp

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/netutils"
)

var ErrClosed = errors.New("router is closed")

// StreamServer is the server LOCATION headers point to.
type StreamServer interface {
	ListenPort() (int, bool)
}

// UDPRouter multicasts NOTIFY messages, one socket per local address.
type UDPRouter struct {
	server  StreamServer
	headers Headers
	ttl     int
	list    func() ([]netutils.InterfaceAddr, error)
	log     *log.Entry

	mu     sync.Mutex
	conns  map[netip.Addr]*ipv4.PacketConn
	closed bool
}

type UDPRouterOption func(*UDPRouter)

func WithHeaders(h Headers) UDPRouterOption {
	return func(r *UDPRouter) {
		r.headers = h
	}
}

// WithTTL sets the multicast TTL. UDA recommends 2.
func WithTTL(ttl int) UDPRouterOption {
	return func(r *UDPRouter) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithInterfaceLister(list func() ([]netutils.InterfaceAddr, error)) UDPRouterOption {
	return func(r *UDPRouter) {
		r.list = list
	}
}

func WithRouterLogger(l *log.Entry) UDPRouterOption {
	return func(r *UDPRouter) {
		r.log = l
	}
}

func NewUDPRouter(server StreamServer, opts ...UDPRouterOption) *UDPRouter {
	r := &UDPRouter{
		server:  server,
		headers: DefaultHeaders(),
		ttl:     2,
		list:    netutils.ListInterfaceAddrs,
		log:     log.WithField("component", "ssdp-router"),
		conns:   make(map[netip.Addr]*ipv4.PacketConn),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ActiveAddresses returns the multicast-capable IPv4 addresses of the host
// while the stream server is listening.
func (r *UDPRouter) ActiveAddresses(preferred netip.Addr) []NetworkAddress {
	port, ok := r.server.ListenPort()
	if !ok {
		return nil
	}

	addrs, err := r.list()
	if err != nil {
		r.log.Warnf("❌ cannot list network interfaces: %v", err)
		return nil
	}

	var active []NetworkAddress
	for _, a := range netutils.MulticastIPv4(addrs) {
		active = append(active, NetworkAddress{
			Interface: a.Interface,
			Addr:      a.Addr,
			Port:      port,
		})
	}

	if preferred.IsValid() {
		preferred = preferred.Unmap()
		for _, a := range active {
			if a.Addr == preferred {
				return []NetworkAddress{a}
			}
		}
	}

	return active
}

// Send multicasts msg from the address of its location.
func (r *UDPRouter) Send(msg OutgoingNotification) error {
	conn, err := r.conn(msg.Location.Address)
	if err != nil {
		return err
	}

	if _, err := conn.WriteTo(Encode(msg, r.headers), nil, MulticastAddr); err != nil {
		return fmt.Errorf("multicast from %s: %w", msg.Location.Address, err)
	}

	r.log.Tracef("📡 %s", msg)
	return nil
}

func (r *UDPRouter) conn(addr NetworkAddress) (*ipv4.PacketConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if c, ok := r.conns[addr.Addr]; ok {
		return c, nil
	}

	raw, err := net.ListenPacket("udp4", net.JoinHostPort(addr.Addr.String(), "0"))
	if err != nil {
		return nil, fmt.Errorf("cannot bind %s: %w", addr.Addr, err)
	}

	c := ipv4.NewPacketConn(raw)
	if err := r.setup(c, addr); err != nil {
		raw.Close()
		return nil, err
	}

	r.conns[addr.Addr] = c
	r.log.Debugf("✅ Multicast socket bound on %s", addr)
	return c, nil
}

func (r *UDPRouter) setup(c *ipv4.PacketConn, addr NetworkAddress) error {
	if addr.Interface != "" {
		ifi, err := net.InterfaceByName(addr.Interface)
		if err != nil {
			return fmt.Errorf("interface %s: %w", addr.Interface, err)
		}
		if err := c.SetMulticastInterface(ifi); err != nil {
			return fmt.Errorf("multicast interface %s: %w", addr.Interface, err)
		}
	}
	if err := c.SetMulticastTTL(r.ttl); err != nil {
		return fmt.Errorf("multicast TTL: %w", err)
	}
	if err := c.SetMulticastLoopback(true); err != nil {
		return fmt.Errorf("multicast loopback: %w", err)
	}
	return nil
}

// Close releases every socket. Later sends fail with ErrClosed.
func (r *UDPRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	var errs []error
	for a, c := range r.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.conns, a)
	}
	return errors.Join(errs...)
}
