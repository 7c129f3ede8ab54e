package upnp

import "strings"

// Namespace lays out the URL paths served for devices.
type Namespace struct {
	// Prefix is prepended to every path, e.g. "/upnp". Empty means none.
	Prefix string
}

// DescriptorPath returns the path of the description document for the tree
// d belongs to. Embedded devices share their root's document.
func (ns Namespace) DescriptorPath(d *Device) string {
	return ns.path(d.Root().BaseRoute() + "/desc.xml")
}

func (ns Namespace) path(p string) string {
	prefix := strings.TrimSuffix(ns.Prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix + p
}
