package ssdp

import (
	"context"
	"net/netip"
	"time"

	log "github.com/sirupsen/logrus"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

const (
	// DefaultRepeat is how many times every message is sent. UDA 1.0 says
	// at most 3 times for alive messages; it is used for all subtypes.
	DefaultRepeat = 3

	// DefaultInterval separates two bursts. UDA 1.1 recommends "a few
	// hundred milliseconds".
	DefaultInterval = 150 * time.Millisecond
)

// DescriptorPather gives the path of the description document of a device.
type DescriptorPather interface {
	DescriptorPath(d *upnp.Device) string
}

// Dispatcher sends the NOTIFY bursts of a device tree. It keeps no state
// between calls and can be shared by concurrent dispatches.
type Dispatcher struct {
	router    Router
	namespace DescriptorPather
	preferred PreferredAddressProvider
	repeat    int
	interval  time.Duration
	log       *log.Entry
}

type DispatcherOption func(*Dispatcher)

func WithRepeat(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.repeat = n
		}
	}
}

func WithInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if interval >= 0 {
			d.interval = interval
		}
	}
}

func WithPreferredAddressProvider(p PreferredAddressProvider) DispatcherOption {
	return func(d *Dispatcher) {
		if p != nil {
			d.preferred = p
		}
	}
}

func WithDispatcherLogger(l *log.Entry) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// NewDispatcher builds a dispatcher sending through router. The preferred
// address defaults to the first non-loopback address of the host.
func NewDispatcher(router Router, namespace DescriptorPather, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		router:    router,
		namespace: namespace,
		preferred: InterfaceAddressProvider{},
		repeat:    DefaultRepeat,
		interval:  DefaultInterval,
		log:       log.WithField("component", "ssdp"),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch announces device with the given subtype on every active address.
//
// No active address is not an error. Cancelling ctx while waiting between
// two bursts stops the dispatch and still returns nil. The first failed
// send aborts the dispatch and is returned as a *SendError.
func (d *Dispatcher) Dispatch(ctx context.Context, device *upnp.Device, subtype NotificationSubtype) error {
	logger := d.log.WithFields(log.Fields{
		"device":  device.Name(),
		"udn":     device.UDN(),
		"subtype": subtype.String(),
	})

	preferred := d.preferredAddress(logger)
	addresses := NewAddressSelector(d.router, logger).SelectActiveAddresses(preferred)
	if len(addresses) == 0 {
		logger.Info("Aborting notifications, no active stream servers found (network disabled?)")
		return nil
	}

	// The locations do not change between bursts.
	locations := BuildLocations(addresses, d.namespace.DescriptorPath(device))

	for i := 0; i < d.repeat; i++ {
		for _, location := range locations {
			if err := d.sendMessages(logger, device, location, subtype); err != nil {
				return err
			}
		}

		if i == d.repeat-1 {
			break
		}

		logger.Tracef("Sleeping %v", d.interval)
		if !d.wait(ctx) {
			logger.Warnf("Advertisement interrupted after %d of %d bursts: %v", i+1, d.repeat, context.Cause(ctx))
			return nil
		}
	}

	logger.Debugf("📡 Sent %d bursts on %d locations", d.repeat, len(locations))
	return nil
}

func (d *Dispatcher) preferredAddress(logger *log.Entry) netip.Addr {
	addr, err := d.preferred.PreferredAddress()
	if err != nil {
		logger.Debugf("No preferred address: %v", err)
		return netip.Addr{}
	}
	if addr.IsValid() {
		logger.Debugf("Preferred address %s", addr)
	}
	return addr
}

func (d *Dispatcher) sendMessages(logger *log.Entry, device *upnp.Device, location Location, subtype NotificationSubtype) error {
	logger.Tracef("Sending root device messages: %s", location)
	if err := d.send(ExpandDevice(device, location, subtype)); err != nil {
		return err
	}

	for _, embedded := range device.EmbeddedDevices() {
		logger.Tracef("Sending embedded device messages: %s", embedded.Name())
		if err := d.send(ExpandDevice(embedded, location, subtype)); err != nil {
			return err
		}
	}

	if msgs := ExpandServiceTypes(device, location, subtype); len(msgs) > 0 {
		logger.Trace("Sending service type messages")
		return d.send(msgs)
	}
	return nil
}

func (d *Dispatcher) send(msgs []OutgoingNotification) error {
	for _, msg := range msgs {
		if err := d.router.Send(msg); err != nil {
			return &SendError{Message: msg, Err: err}
		}
	}
	return nil
}

// wait sleeps for the burst interval. It returns false when ctx ends first.
func (d *Dispatcher) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
