package upnp

import (
	"iter"

	"github.com/beevik/etree"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp/objectstore"
)

type DeviceSet objectstore.ObjectSet[*Device]

func (m *DeviceSet) Insert(obj *Device) error {
	return (*objectstore.ObjectSet[*Device])(m).Insert(obj)
}

func (set *DeviceSet) Contains(obj *Device) bool {
	return (*objectstore.ObjectSet[*Device])(set).Contains(obj)
}

func (m *DeviceSet) Get(name string) (*Device, bool) {
	return (*objectstore.ObjectSet[*Device])(m).Get(name)
}

func (m *DeviceSet) Len() int {
	return (*objectstore.ObjectSet[*Device])(m).Len()
}

func (m *DeviceSet) All() iter.Seq[*Device] {
	return (*objectstore.ObjectSet[*Device])(m).All()
}

func (m *DeviceSet) ToXMLElement(ns Namespace) *etree.Element {
	elem := etree.NewElement("deviceList")

	for d := range m.All() {
		elem.AddChild(d.deviceElement(ns))
	}

	return elem
}
