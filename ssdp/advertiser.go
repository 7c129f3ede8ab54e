package ssdp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

var (
	ErrNoDevice     = errors.New("device not registered")
	ErrDeviceExists = errors.New("device already registered")
)

// Advertiser keeps the set of announced root devices alive: it repeats
// ssdp:alive every half max-age and says byebye when it stops.
type Advertiser struct {
	dispatcher *Dispatcher
	maxAge     time.Duration
	log        *log.Entry

	mu      sync.RWMutex
	devices map[string]*upnp.Device
}

type AdvertiserOption func(*Advertiser)

// WithMaxAge sets the CACHE-CONTROL max-age the announcements are renewed
// against.
func WithMaxAge(maxAge time.Duration) AdvertiserOption {
	return func(a *Advertiser) {
		if maxAge > 0 {
			a.maxAge = maxAge
		}
	}
}

func WithAdvertiserLogger(l *log.Entry) AdvertiserOption {
	return func(a *Advertiser) {
		a.log = l
	}
}

func NewAdvertiser(dispatcher *Dispatcher, opts ...AdvertiserOption) *Advertiser {
	a := &Advertiser{
		dispatcher: dispatcher,
		maxAge:     MaxAge * time.Second,
		log:        log.WithField("component", "ssdp-advertiser"),
		devices:    make(map[string]*upnp.Device),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Add registers a root device and announces it.
func (a *Advertiser) Add(ctx context.Context, d *upnp.Device) error {
	if !d.IsRoot() {
		return fmt.Errorf("%s: %w", d.Name(), upnp.ErrNotRoot)
	}

	a.mu.Lock()
	if _, ok := a.devices[d.UDN()]; ok {
		a.mu.Unlock()
		return fmt.Errorf("%s: %w", d.UDN(), ErrDeviceExists)
	}
	a.devices[d.UDN()] = d
	a.mu.Unlock()

	a.log.Infof("✅ Notify alive: %s (%s)", d.Name(), d.UDN())
	return a.dispatcher.Dispatch(ctx, d, Alive)
}

// Update announces that the location or description of a device changed.
func (a *Advertiser) Update(ctx context.Context, udn string) error {
	d, ok := a.Device(udn)
	if !ok {
		return fmt.Errorf("%s: %w", udn, ErrNoDevice)
	}

	a.log.Infof("✅ Notify update: %s (%s)", d.Name(), d.UDN())
	return a.dispatcher.Dispatch(ctx, d, Update)
}

// Remove withdraws a device and says byebye for it.
func (a *Advertiser) Remove(ctx context.Context, udn string) error {
	udn = upnp.NormalizeUDN(udn)

	a.mu.Lock()
	d, ok := a.devices[udn]
	delete(a.devices, udn)
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", udn, ErrNoDevice)
	}

	a.log.Infof("👋 Notify byebye: %s (%s)", d.Name(), d.UDN())
	return a.dispatcher.Dispatch(ctx, d, ByeBye)
}

func (a *Advertiser) Device(udn string) (*upnp.Device, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	d, ok := a.devices[upnp.NormalizeUDN(udn)]
	return d, ok
}

// Devices returns the registered devices ordered by UDN.
func (a *Advertiser) Devices() []*upnp.Device {
	a.mu.RLock()
	out := make([]*upnp.Device, 0, len(a.devices))
	for _, d := range a.devices {
		out = append(out, d)
	}
	a.mu.RUnlock()

	slices.SortFunc(out, func(x, y *upnp.Device) int {
		return strings.Compare(x.UDN(), y.UDN())
	})
	return out
}

// Run renews the announcements until ctx ends, then sends byebye for every
// registered device.
func (a *Advertiser) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.maxAge / 2)
	defer ticker.Stop()

	a.log.Infof("✅ Advertising every %v", a.maxAge/2)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("✅ Stopping advertiser, sending byebye for all devices")
			byeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			a.announce(byeCtx, ByeBye)
			cancel()
			return nil
		case <-ticker.C:
			a.announce(ctx, Alive)
		}
	}
}

// announce dispatches subtype for every device concurrently and waits for
// all of them.
func (a *Advertiser) announce(ctx context.Context, subtype NotificationSubtype) {
	var wg sync.WaitGroup
	for _, d := range a.Devices() {
		wg.Add(1)
		go func(d *upnp.Device) {
			defer wg.Done()
			if err := a.dispatcher.Dispatch(ctx, d, subtype); err != nil {
				a.log.Warnf("❌ Failed to notify %s: %s: %v", subtype, d.UDN(), err)
			}
		}(d)
	}
	wg.Wait()
}
