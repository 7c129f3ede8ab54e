package upnp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	log "github.com/sirupsen/logrus"
)

var ErrNotRoot = errors.New("only root devices can be registered")

// Server serves the description documents of the registered root devices.
// It is the stream server SSDP LOCATION headers point to.
type Server struct {
	name      string
	httpPort  int
	namespace Namespace

	Logger   *log.Entry
	httpSrv  *http.Server
	listener net.Listener
	mux      *http.ServeMux

	devices   DeviceSet
	mu        sync.RWMutex
	startOnce sync.Once
	stopOnce  sync.Once
}

type ServerOption func(*Server)

func WithLogger(l *log.Entry) ServerOption {
	return func(s *Server) {
		s.Logger = l
	}
}

// WithHTTPPort sets the listening port. 0 picks a free one.
func WithHTTPPort(port int) ServerOption {
	return func(s *Server) {
		s.httpPort = port
	}
}

func WithNamespace(ns Namespace) ServerOption {
	return func(s *Server) {
		s.namespace = ns
	}
}

// WithMux lets the caller mount extra handlers, like the web logger, next
// to the device documents.
func WithMux(fn func(mux *http.ServeMux)) ServerOption {
	return func(s *Server) {
		fn(s.mux)
	}
}

func NewServer(name string, opts ...ServerOption) *Server {
	s := &Server{
		name:     name,
		httpPort: 1400,
		Logger:   log.NewEntry(log.StandardLogger()),
		mux:      http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) Name() string   { return s.name }
func (s *Server) TypeID() string { return "Server" }

func (s *Server) Namespace() Namespace { return s.namespace }

// RegisterDevice adds a root device. Its documents are served once the
// server is started; devices registered later are served immediately.
func (s *Server) RegisterDevice(d *Device) error {
	if !d.IsRoot() {
		return fmt.Errorf("%s: %w", d.Name(), ErrNotRoot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.devices.Insert(d); err != nil {
		return err
	}

	s.Logger.Infof("✅ Registering device %s (%s)", d.Name(), d.UDN())

	if s.httpSrv != nil {
		s.registerURLs(d)
	}
	return nil
}

// Devices iterates the registered root devices.
func (s *Server) Devices() []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Device, 0, s.devices.Len())
	for d := range s.devices.All() {
		out = append(out, d)
	}
	return out
}

func (s *Server) registerURLs(d *Device) {
	s.mux.HandleFunc(s.namespace.DescriptorPath(d), s.ServeXML(func() *etree.Element {
		return d.DescriptionElement(s.namespace)
	}))

	register := func(dev *Device) {
		for svc := range dev.Services() {
			s.mux.HandleFunc(s.namespace.path(svc.SCPDURL()), s.ServeXML(svc.SCPDElement))
		}
	}
	register(d)
	for _, e := range d.EmbeddedDevices() {
		register(e)
	}

	s.Logger.Infof(
		"✅ Device description for %s available at : %s",
		d.Name(),
		s.namespace.DescriptorPath(d),
	)
}

// Start binds the listening socket and serves in the background. Only the
// first call has an effect.
func (s *Server) Start() error {
	var err error
	s.startOnce.Do(func() {
		var ln net.Listener
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", s.httpPort))
		if err != nil {
			err = fmt.Errorf("cannot listen on port %d: %w", s.httpPort, err)
			return
		}

		s.mu.Lock()
		s.mux.HandleFunc("/", s.ServeDebugIndex)
		s.listener = ln
		s.httpSrv = &http.Server{
			Handler:           s.mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		for d := range s.devices.All() {
			s.registerURLs(d)
		}
		srv := s.httpSrv
		s.mu.Unlock()

		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Errorf("❌ server error: %v", err)
			}
		}()

		s.Logger.Infof("✅ UPnP description server listening on %s", ln.Addr())
	})

	return err
}

func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpSrv
		s.httpSrv = nil
		s.listener = nil
		s.mu.Unlock()

		if srv != nil {
			s.Logger.Info("✅ Shutting down UPnP description server...")
			err = srv.Shutdown(ctx)
		}
	})
	return err
}

func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// ListenPort reports the TCP port documents are served on, and whether the
// server is currently listening.
func (s *Server) ListenPort() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return 0, false
	}
	addr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, false
	}
	return addr.Port, true
}

// XML renders the element produced by gen as an indented document with its
// XML header.
func (s *Server) XML(gen func() *etree.Element) (string, error) {
	root := gen()
	doc := etree.NewDocument()
	doc.SetRoot(root)

	doc.Indent(2)

	buf := new(bytes.Buffer)
	if _, err := doc.WriteTo(buf); err != nil {
		return "", err
	}

	return `<?xml version="1.0" encoding="utf-8"?>` + "\n" + buf.String(), nil
}

func (s *Server) ServeXML(gen func() *etree.Element) func(w http.ResponseWriter, r *http.Request) {

	return func(w http.ResponseWriter, r *http.Request) {
		xmlStr, err := s.XML(gen)
		if err != nil {
			http.Error(w, "failed to generate XML", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(xmlStr))
	}
}
