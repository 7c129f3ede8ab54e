package upnp

import (
	"fmt"

	"github.com/beevik/etree"
)

// Service is a service hosted by a single Device.
type Service struct {
	name    string
	svctype ServiceType
	device  *Device
}

// NewService creates a service of the schemas-upnp-org namespace with
// version 1. Use SetVersion or SetNamespace to change it.
func NewService(name string) *Service {
	return &Service{
		name:    name,
		svctype: ServiceType{Namespace: DefaultNamespace, Name: name, Version: 1},
	}
}

func (svc *Service) Name() string {
	return svc.name
}

func (svc *Service) TypeID() string {
	return "Service"
}

func (svc *Service) ServiceType() ServiceType {
	return svc.svctype
}

func (svc *Service) SetNamespace(ns string) {
	svc.svctype.Namespace = ns
}

func (svc *Service) SetVersion(version int) error {
	if version < 1 {
		return fmt.Errorf("%s", "version must be greater than or equal to 1")
	}
	svc.svctype.Version = version
	return nil
}

func (svc *Service) Version() int {
	return svc.svctype.Version
}

// Device returns the device hosting the service, nil until added.
func (svc *Service) Device() *Device {
	return svc.device
}

func (svc *Service) BaseRoute() string {
	if svc.device == nil {
		return "/service/" + svc.name
	}
	return fmt.Sprintf("%s/service/%s", svc.device.BaseRoute(), svc.name)
}

func (svc *Service) SCPDURL() string {
	return svc.BaseRoute() + "/desc.xml"
}

func (svc *Service) ControlURL() string {
	return svc.BaseRoute() + "/control"
}

func (svc *Service) EventSubURL() string {
	return svc.BaseRoute() + "/event"
}

// SCPDElement builds an empty service description: actions and state
// variables are not exposed.
func (svc *Service) SCPDElement() *etree.Element {
	elem := etree.NewElement("scpd")
	elem.CreateAttr("xmlns", "urn:schemas-upnp-org:service-1-0")

	spec := elem.CreateElement("specVersion")
	spec.CreateElement("major").SetText("1")
	spec.CreateElement("minor").SetText("1")

	elem.CreateElement("actionList")
	elem.CreateElement("serviceStateTable")
	return elem
}

func (svc *Service) ToXMLElement(ns Namespace) *etree.Element {
	elem := etree.NewElement("service")
	elem.CreateElement("serviceType").SetText(svc.svctype.String())
	elem.CreateElement("serviceId").SetText(svc.svctype.ServiceID())
	elem.CreateElement("SCPDURL").SetText(ns.path(svc.SCPDURL()))
	elem.CreateElement("controlURL").SetText(ns.path(svc.ControlURL()))
	elem.CreateElement("eventSubURL").SetText(ns.path(svc.EventSubURL()))
	return elem
}
