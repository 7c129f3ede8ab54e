package ssdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

func TestExpandRootWithServices(t *testing.T) {
	root := newRenderer([]string{"AVTransport", "RenderingControl"})
	loc := testLocation()

	msgs := Expand(root, loc, Alive)
	require.Len(t, msgs, 5)

	assert.Equal(t, "upnp:rootdevice", msgs[0].NT)
	assert.Equal(t, "uuid:root-0001::upnp:rootdevice", msgs[0].USN)

	assert.Equal(t, "uuid:root-0001", msgs[1].NT)
	assert.Equal(t, "uuid:root-0001", msgs[1].USN)

	assert.Equal(t, "urn:schemas-upnp-org:device:MediaRenderer:1", msgs[2].NT)
	assert.Equal(t, "uuid:root-0001::urn:schemas-upnp-org:device:MediaRenderer:1", msgs[2].USN)

	assert.Equal(t, "urn:schemas-upnp-org:service:AVTransport:1", msgs[3].NT)
	assert.Equal(t, "uuid:root-0001::urn:schemas-upnp-org:service:AVTransport:1", msgs[3].USN)
	assert.Equal(t, "urn:schemas-upnp-org:service:RenderingControl:1", msgs[4].NT)

	for _, m := range msgs {
		assert.Equal(t, loc, m.Location)
		assert.Equal(t, Alive, m.Subtype)
	}
}

func TestExpandRootWithEmbeddedDevice(t *testing.T) {
	child := upnp.NewDevice("server", upnp.MediaServer, "uuid:child-0001")
	root := newRenderer(nil, child)

	msgs := Expand(root, testLocation(), ByeBye)
	require.Len(t, msgs, 5)

	assert.Equal(t, "uuid:child-0001", msgs[3].NT)
	assert.Equal(t, "uuid:child-0001", msgs[3].USN)
	assert.Equal(t, "urn:schemas-upnp-org:device:MediaServer:1", msgs[4].NT)
	assert.Equal(t, "uuid:child-0001::urn:schemas-upnp-org:device:MediaServer:1", msgs[4].USN)
}

func TestExpandFanOutCount(t *testing.T) {
	grandchild := upnp.NewDevice("grandchild", upnp.MediaServer, "")
	child := upnp.NewDevice("child", upnp.MediaServer, "")
	require.NoError(t, child.AddDevice(grandchild))
	require.NoError(t, child.AddService(upnp.NewService("ContentDirectory")))
	require.NoError(t, grandchild.AddService(upnp.NewService("ScheduledRecording")))
	other := upnp.NewDevice("other", upnp.MediaServer, "")

	root := newRenderer([]string{"AVTransport", "RenderingControl", "ConnectionManager"}, child, other)

	msgs := Expand(root, testLocation(), Alive)
	// 3 for the root, 2 per embedded device, one per root service
	assert.Len(t, msgs, 3+3*2+3)

	var order []string
	for _, m := range msgs {
		if m.NT == m.USN {
			order = append(order, m.NT)
		}
		assert.NotEqual(t, "urn:schemas-upnp-org:service:ContentDirectory:1", m.NT)
		assert.NotEqual(t, "urn:schemas-upnp-org:service:ScheduledRecording:1", m.NT)
	}
	assert.Equal(t, []string{root.UDN(), child.UDN(), grandchild.UDN(), other.UDN()}, order)
}

func TestExpandNoRootDeviceForEmbedded(t *testing.T) {
	grandchild := upnp.NewDevice("grandchild", upnp.MediaServer, "")
	child := upnp.NewDevice("child", upnp.MediaServer, "")
	require.NoError(t, child.AddDevice(grandchild))
	root := newRenderer(nil, child)

	rootCount := 0
	for _, m := range Expand(root, testLocation(), Alive) {
		if m.NT == RootDeviceNT {
			rootCount++
			assert.Equal(t, root.UDN()+"::"+RootDeviceNT, m.USN)
		}
	}
	assert.Equal(t, 1, rootCount)

	for _, d := range []*upnp.Device{child, grandchild} {
		for _, m := range Expand(d, testLocation(), Alive) {
			assert.NotEqual(t, RootDeviceNT, m.NT)
		}
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	child := upnp.NewDevice("child", upnp.MediaServer, "")
	root := newRenderer([]string{"AVTransport", "ConnectionManager"}, child)

	first := Expand(root, testLocation(), Update)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Expand(root, testLocation(), Update))
	}
}

func TestExpandSubtypeDoesNotChangeShape(t *testing.T) {
	root := newRenderer([]string{"AVTransport"}, upnp.NewDevice("child", upnp.MediaServer, ""))

	alive := Expand(root, testLocation(), Alive)
	for _, st := range []NotificationSubtype{ByeBye, Update} {
		other := Expand(root, testLocation(), st)
		require.Len(t, other, len(alive))
		for i := range alive {
			assert.Equal(t, alive[i].NT, other[i].NT)
			assert.Equal(t, alive[i].USN, other[i].USN)
			assert.Equal(t, st, other[i].Subtype)
		}
	}
}
