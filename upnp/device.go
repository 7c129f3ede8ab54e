package upnp

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

var (
	ErrHasParent = errors.New("device is already embedded")
	ErrCycle     = errors.New("device cannot embed itself or an ancestor")
)

const udnPrefix = "uuid:"

type Device struct {
	name    string
	devtype DeviceType
	udn     string
	parent  *Device

	friendlyName     string
	manufacturer     string
	manufacturerURL  string
	modelDescription string
	modelName        string
	modelNumber      string
	serialNumber     string

	devices  DeviceSet
	services ServiceSet
}

// NewUDN returns a fresh random UDN.
func NewUDN() string {
	return udnPrefix + uuid.New().String()
}

// NormalizeUDN adds the uuid: prefix when missing.
func NormalizeUDN(udn string) string {
	if strings.HasPrefix(udn, udnPrefix) {
		return udn
	}
	return udnPrefix + udn
}

// NewDevice creates a root device. It stops being a root device once
// embedded into another one with AddDevice.
//
// An empty udn gets a random one.
func NewDevice(name string, devtype DeviceType, udn string) *Device {
	if udn == "" {
		udn = NewUDN()
	}
	return &Device{
		name:         name,
		devtype:      devtype,
		udn:          NormalizeUDN(udn),
		friendlyName: "PMOSSDP - " + name,
		manufacturer: "Petit Maison Orange",
		modelName:    "PMOSSDP - " + name,
	}
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) TypeID() string {
	return "Device"
}

func (d *Device) UDN() string {
	return d.udn
}

func (d *Device) DeviceType() DeviceType {
	return d.devtype
}

func (d *Device) IsRoot() bool {
	return d.parent == nil
}

func (d *Device) Parent() *Device {
	return d.parent
}

// Root walks up to the device owning the whole tree.
func (d *Device) Root() *Device {
	r := d
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (d *Device) FriendlyName() string {
	return d.friendlyName
}

func (d *Device) SetFriendlyName(name string) {
	d.friendlyName = name
}

func (d *Device) Manufacturer() string {
	return d.manufacturer
}

func (d *Device) SetManufacturer(manufacturer string) {
	d.manufacturer = manufacturer
}

func (d *Device) SetManufacturerURL(url string) {
	d.manufacturerURL = url
}

func (d *Device) ModelName() string {
	return d.modelName
}

func (d *Device) SetModelName(name string) {
	d.modelName = name
}

func (d *Device) SetModelDescription(desc string) {
	d.modelDescription = desc
}

func (d *Device) SetModelNumber(number string) {
	d.modelNumber = number
}

func (d *Device) SetSerialNumber(serial string) {
	d.serialNumber = serial
}

// AddDevice embeds child into d.
func (d *Device) AddDevice(child *Device) error {
	if child.parent != nil {
		return fmt.Errorf("%s: %w", child.Name(), ErrHasParent)
	}
	for a := d; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("%s: %w", child.Name(), ErrCycle)
		}
	}
	if err := d.devices.Insert(child); err != nil {
		return err
	}
	child.parent = d
	return nil
}

func (d *Device) AddService(svc *Service) error {
	if err := d.services.Insert(svc); err != nil {
		return err
	}
	svc.device = d
	return nil
}

// Devices iterates the directly embedded devices.
func (d *Device) Devices() iter.Seq[*Device] {
	return d.devices.All()
}

func (d *Device) HasEmbeddedDevices() bool {
	return d.devices.Len() > 0
}

// EmbeddedDevices returns every descendant, depth-first in declaration
// order.
func (d *Device) EmbeddedDevices() []*Device {
	var out []*Device
	var walk func(*Device)
	walk = func(p *Device) {
		for c := range p.devices.All() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(d)
	return out
}

// Services iterates the services declared directly on d.
func (d *Device) Services() iter.Seq[*Service] {
	return d.services.All()
}

// ServiceTypes returns the distinct service types declared directly on d,
// in declaration order.
func (d *Device) ServiceTypes() []ServiceType {
	seen := make(map[ServiceType]bool)
	var out []ServiceType
	for svc := range d.services.All() {
		st := svc.ServiceType()
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	return out
}

func (d *Device) BaseRoute() string {
	return fmt.Sprintf("/device/%s/%s", d.devtype.Name, strings.TrimPrefix(d.udn, udnPrefix))
}

// ToXMLElement builds the <root> description document of the tree d
// belongs to.
func (d *Device) ToXMLElement() *etree.Element {
	return d.DescriptionElement(Namespace{})
}

// DescriptionElement is ToXMLElement with service URLs laid out by ns.
func (d *Device) DescriptionElement(ns Namespace) *etree.Element {
	elem := etree.NewElement("root")
	elem.CreateAttr("xmlns", "urn:schemas-upnp-org:device-1-0")

	spec := elem.CreateElement("specVersion")
	spec.CreateElement("major").SetText("1")
	spec.CreateElement("minor").SetText("1")

	elem.AddChild(d.Root().deviceElement(ns))
	return elem
}

func (d *Device) deviceElement(ns Namespace) *etree.Element {
	device := etree.NewElement("device")
	device.CreateElement("deviceType").SetText(d.devtype.String())
	device.CreateElement("friendlyName").SetText(d.friendlyName)
	device.CreateElement("manufacturer").SetText(d.manufacturer)
	if d.manufacturerURL != "" {
		device.CreateElement("manufacturerURL").SetText(d.manufacturerURL)
	}
	if d.modelDescription != "" {
		device.CreateElement("modelDescription").SetText(d.modelDescription)
	}
	device.CreateElement("modelName").SetText(d.modelName)
	if d.modelNumber != "" {
		device.CreateElement("modelNumber").SetText(d.modelNumber)
	}
	if d.serialNumber != "" {
		device.CreateElement("serialNumber").SetText(d.serialNumber)
	}
	device.CreateElement("UDN").SetText(d.udn)

	if d.services.Len() > 0 {
		device.AddChild(d.services.ToXMLElement(ns))
	}
	if d.devices.Len() > 0 {
		device.AddChild(d.devices.ToXMLElement(ns))
	}
	return device
}
