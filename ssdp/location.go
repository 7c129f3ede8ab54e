package ssdp

import "strings"

// Location is where a remote party fetches a device description.
type Location struct {
	Address NetworkAddress
	Path    string
}

func (l Location) URL() string {
	p := l.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "http://" + l.Address.HostPort() + p
}

func (l Location) String() string {
	return l.URL()
}

// BuildLocations binds the descriptor path to each address.
func BuildLocations(addresses []NetworkAddress, path string) []Location {
	locations := make([]Location, 0, len(addresses))
	for _, a := range addresses {
		locations = append(locations, Location{Address: a, Path: path})
	}
	return locations
}
