package upnp

import (
	"iter"

	"github.com/beevik/etree"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp/objectstore"
)

type ServiceSet objectstore.ObjectSet[*Service]

func (m *ServiceSet) Insert(obj *Service) error {
	return (*objectstore.ObjectSet[*Service])(m).Insert(obj)
}

func (set *ServiceSet) Contains(obj *Service) bool {
	return (*objectstore.ObjectSet[*Service])(set).Contains(obj)
}

func (m *ServiceSet) Len() int {
	return (*objectstore.ObjectSet[*Service])(m).Len()
}

func (m *ServiceSet) All() iter.Seq[*Service] {
	return (*objectstore.ObjectSet[*Service])(m).All()
}

func (m *ServiceSet) ToXMLElement(ns Namespace) *etree.Element {
	elem := etree.NewElement("serviceList")

	for sv := range m.All() {
		elem.AddChild(sv.ToXMLElement(ns))
	}

	return elem
}
