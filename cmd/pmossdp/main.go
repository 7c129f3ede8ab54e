package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gargoton.petite-maison-orange.fr/eric/pmossdp/pmolog"
	"gargoton.petite-maison-orange.fr/eric/pmossdp/ssdp"
	"gargoton.petite-maison-orange.fr/eric/pmossdp/upnp"
)

func main() {
	configPath := flag.String("config", "", "path of the YAML configuration file")
	flag.Parse()

	config := upnp.LoadConfig(*configPath)

	logCfg := pmolog.DefaultLogConfig()
	logCfg.Level = pmolog.ParseLevel(config.GetLogLevel())
	pmolog.Setup(logCfg)

	root, err := buildDevices(config)
	if err != nil {
		log.Fatalf("❌ Cannot build device tree: %v", err)
	}

	opts := []upnp.ServerOption{
		upnp.WithHTTPPort(config.GetHTTPPort()),
		upnp.WithNamespace(upnp.Namespace{Prefix: config.GetURLPrefix()}),
	}
	if config.GetWebLogger() {
		broker := pmolog.NewBroker(0)
		opts = append(opts, upnp.WithMux(func(mux *http.ServeMux) {
			pmolog.LoggerWeb(mux, broker)
		}))
	}

	server := upnp.NewServer(config.GetName(), opts...)
	if err := server.RegisterDevice(root); err != nil {
		log.Fatalf("❌ Cannot register device: %v", err)
	}

	headers := ssdp.DefaultHeaders()
	headers.MaxAge = config.GetSSDPMaxAge()

	router := ssdp.NewUDPRouter(server,
		ssdp.WithHeaders(headers),
		ssdp.WithTTL(config.GetMulticastTTL()),
	)
	defer router.Close()

	dispatcher := ssdp.NewDispatcher(router, server.Namespace(),
		ssdp.WithRepeat(config.GetSSDPRepeat()),
		ssdp.WithInterval(config.GetSSDPInterval()),
	)
	advertiser := ssdp.NewAdvertiser(dispatcher,
		ssdp.WithMaxAge(time.Duration(config.GetSSDPMaxAge())*time.Second),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// The server outlives the advertiser so that the final byebye burst
	// still finds active addresses.
	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(serverCtx)
	})
	g.Go(func() error {
		defer stopServer()
		if err := advertiser.Add(gctx, root); err != nil {
			log.Warnf("❌ Initial announcement failed: %v", err)
		}
		return advertiser.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Info("👋 Bye")
}
