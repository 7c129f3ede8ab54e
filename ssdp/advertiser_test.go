package ssdp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

func newTestAdvertiser(router *fakeRouter, opts ...AdvertiserOption) *Advertiser {
	return NewAdvertiser(newTestDispatcher(router, WithRepeat(1)), opts...)
}

func TestAdvertiserAdd(t *testing.T) {
	router := &fakeRouter{addresses: testAddresses()[:1]}
	a := newTestAdvertiser(router)
	root := newRenderer([]string{"AVTransport"})

	require.NoError(t, a.Add(context.Background(), root))
	assert.Equal(t, 4, router.Count(Alive))

	d, ok := a.Device("root-0001")
	require.True(t, ok)
	assert.Same(t, root, d)

	err := a.Add(context.Background(), root)
	assert.ErrorIs(t, err, ErrDeviceExists)
}

func TestAdvertiserAddEmbedded(t *testing.T) {
	child := upnp.NewDevice("server", upnp.MediaServer, "")
	newRenderer(nil, child)

	err := newTestAdvertiser(&fakeRouter{}).Add(context.Background(), child)
	assert.ErrorIs(t, err, upnp.ErrNotRoot)
}

func TestAdvertiserUpdateAndRemove(t *testing.T) {
	router := &fakeRouter{addresses: testAddresses()[:1]}
	a := newTestAdvertiser(router)
	root := newRenderer(nil)

	assert.ErrorIs(t, a.Update(context.Background(), root.UDN()), ErrNoDevice)
	assert.ErrorIs(t, a.Remove(context.Background(), root.UDN()), ErrNoDevice)

	require.NoError(t, a.Add(context.Background(), root))
	require.NoError(t, a.Update(context.Background(), root.UDN()))
	assert.Equal(t, 3, router.Count(Update))

	require.NoError(t, a.Remove(context.Background(), root.UDN()))
	assert.Equal(t, 3, router.Count(ByeBye))
	assert.Empty(t, a.Devices())
}

func TestAdvertiserDevicesOrdered(t *testing.T) {
	a := newTestAdvertiser(&fakeRouter{})
	b := upnp.NewDevice("b", upnp.MediaServer, "uuid:bbbb")
	c := upnp.NewDevice("c", upnp.MediaServer, "uuid:aaaa")

	require.NoError(t, a.Add(context.Background(), b))
	require.NoError(t, a.Add(context.Background(), c))

	devices := a.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "uuid:aaaa", devices[0].UDN())
	assert.Equal(t, "uuid:bbbb", devices[1].UDN())
}

func TestAdvertiserRun(t *testing.T) {
	router := &fakeRouter{addresses: testAddresses()[:1]}
	a := newTestAdvertiser(router, WithMaxAge(20*time.Millisecond))

	first := upnp.NewDevice("first", upnp.MediaRenderer, "")
	second := upnp.NewDevice("second", upnp.MediaServer, "")
	require.NoError(t, a.Add(context.Background(), first))
	require.NoError(t, a.Add(context.Background(), second))
	initial := router.Count(Alive)
	require.Equal(t, 6, initial)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return router.Count(Alive) >= initial+6
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("advertiser did not stop")
	}

	assert.Equal(t, 6, router.Count(ByeBye))
}
