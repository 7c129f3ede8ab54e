package ssdp

import (
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/netutils"
)

type fakeStreamServer struct {
	port      int
	listening bool
}

func (s fakeStreamServer) ListenPort() (int, bool) {
	return s.port, s.listening
}

func fakeInterfaces() ([]netutils.InterfaceAddr, error) {
	up := net.FlagUp | net.FlagMulticast
	return []netutils.InterfaceAddr{
		{Interface: "lo", Flags: net.FlagUp | net.FlagLoopback, Addr: netip.MustParseAddr("127.0.0.1")},
		{Interface: "eth0", Flags: up, Addr: netip.MustParseAddr("10.128.1.252")},
		{Interface: "eth0", Flags: up, Addr: netip.MustParseAddr("fe80::1")},
		{Interface: "wlan0", Flags: up, Addr: netip.MustParseAddr("100.119.242.91")},
	}, nil
}

func TestUDPRouterActiveAddresses(t *testing.T) {
	r := NewUDPRouter(fakeStreamServer{port: 1400, listening: true}, WithInterfaceLister(fakeInterfaces))

	got := r.ActiveAddresses(netip.Addr{})
	assert.Equal(t, []NetworkAddress{
		{Interface: "eth0", Addr: netip.MustParseAddr("10.128.1.252"), Port: 1400},
		{Interface: "wlan0", Addr: netip.MustParseAddr("100.119.242.91"), Port: 1400},
	}, got)
}

func TestUDPRouterPreferredAddress(t *testing.T) {
	r := NewUDPRouter(fakeStreamServer{port: 1400, listening: true}, WithInterfaceLister(fakeInterfaces))

	got := r.ActiveAddresses(netip.MustParseAddr("100.119.242.91"))
	require.Len(t, got, 1)
	assert.Equal(t, "wlan0", got[0].Interface)

	// never narrower than an unrestricted query
	assert.Len(t, r.ActiveAddresses(netip.MustParseAddr("192.168.1.1")), 2)
	assert.Len(t, r.ActiveAddresses(netip.MustParseAddr("fe80::1")), 2)
}

func TestUDPRouterNotListening(t *testing.T) {
	r := NewUDPRouter(fakeStreamServer{}, WithInterfaceLister(fakeInterfaces))
	assert.Empty(t, r.ActiveAddresses(netip.Addr{}))
}

func TestUDPRouterInterfaceError(t *testing.T) {
	r := NewUDPRouter(fakeStreamServer{port: 1400, listening: true},
		WithInterfaceLister(func() ([]netutils.InterfaceAddr, error) {
			return nil, errors.New("platform error")
		}))
	assert.Empty(t, r.ActiveAddresses(netip.Addr{}))
}

func TestUDPRouterSendAfterClose(t *testing.T) {
	r := NewUDPRouter(fakeStreamServer{port: 1400, listening: true})
	require.NoError(t, r.Close())

	err := r.Send(testMessage(Alive))
	assert.ErrorIs(t, err, ErrClosed)
}
