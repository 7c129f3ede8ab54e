package main

import (
	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

// buildDevices assembles the announced tree: a MediaRenderer root with its
// standard services and an embedded MediaServer.
func buildDevices(config *upnp.Config) (*upnp.Device, error) {
	name := config.GetName()

	renderer := upnp.NewDevice(name, upnp.MediaRenderer, config.GetDeviceUDN(upnp.MediaRenderer, name))
	renderer.SetModelDescription("PMOSSDP media renderer")
	for _, svc := range []string{"AVTransport", "RenderingControl", "ConnectionManager"} {
		if err := renderer.AddService(upnp.NewService(svc)); err != nil {
			return nil, err
		}
	}

	serverName := name + "-server"
	server := upnp.NewDevice(serverName, upnp.MediaServer, config.GetDeviceUDN(upnp.MediaServer, serverName))
	for _, svc := range []string{"ContentDirectory", "ConnectionManager"} {
		if err := server.AddService(upnp.NewService(svc)); err != nil {
			return nil, err
		}
	}

	if err := renderer.AddDevice(server); err != nil {
		return nil, err
	}
	return renderer, nil
}
