// Package api serves the RESTful API of the domain resolver.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	v1 "github.com/database64128/regdomain/api/v1"
	"github.com/database64128/regdomain/conn"
	"github.com/database64128/regdomain/jsoncfg"
	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/stats"
	"github.com/gofiber/contrib/fiberzap"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Config stores the configuration for the RESTful API.
type Config struct {
	// Enabled controls whether the API server is enabled.
	Enabled bool `json:"enabled" toml:"enabled"`

	// DebugPprof enables pprof endpoints for debugging and profiling.
	DebugPprof bool `json:"debugPprof" toml:"debugPprof"`

	// EnableTrustedProxyCheck enables trusted proxy checks.
	EnableTrustedProxyCheck bool `json:"enableTrustedProxyCheck" toml:"enableTrustedProxyCheck"`

	// TrustedProxies is the list of trusted proxies.
	// This only takes effect if EnableTrustedProxyCheck is true.
	TrustedProxies []string `json:"trustedProxies" toml:"trustedProxies"`

	// ProxyHeader is the header used to determine the client's IP address.
	// If empty, the remote peer's address is used.
	ProxyHeader string `json:"proxyHeader" toml:"proxyHeader"`

	// AllowedClients restricts access to clients in the listed prefixes.
	// If empty, all clients are allowed.
	AllowedClients []netip.Prefix `json:"allowedClients" toml:"allowedClients"`

	// SecretPath adds a secret path prefix to API and pprof endpoints.
	// If empty, no secret path is added.
	SecretPath string `json:"secretPath" toml:"secretPath"`

	// ReadTimeout is the maximum duration for reading a request.
	// Zero means no timeout.
	ReadTimeout jsoncfg.Duration `json:"readTimeout" toml:"readTimeout"`

	// WriteTimeout is the maximum duration before timing out writes of a response.
	// Zero means no timeout.
	WriteTimeout jsoncfg.Duration `json:"writeTimeout" toml:"writeTimeout"`

	// Listeners is the list of server listeners.
	Listeners []ListenerConfig `json:"listeners" toml:"listeners"`
}

// ListenerConfig is the configuration for a server listener.
type ListenerConfig struct {
	// Network is the network type.
	Network string `json:"network" toml:"network"`

	// Address is the address to listen on.
	Address string `json:"address" toml:"address"`

	// Fwmark sets the listener's fwmark on Linux.
	//
	// Available on Linux.
	Fwmark int `json:"fwmark" toml:"fwmark"`

	// FastOpenBacklog specifies the maximum number of pending TFO connections on Linux.
	// If the value is 0, Go std's listen(2) backlog is used.
	FastOpenBacklog int `json:"fastOpenBacklog" toml:"fastOpenBacklog"`

	// ReusePort enables SO_REUSEPORT on the listener.
	//
	// Available on Linux.
	ReusePort bool `json:"reusePort" toml:"reusePort"`

	// FastOpen enables TCP Fast Open on the listener.
	//
	// Available on Linux, macOS, FreeBSD, and Windows.
	FastOpen bool `json:"fastOpen" toml:"fastOpen"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewServer returns a new API server from the config.
func (c *Config) NewServer(logger *zap.Logger, holder *registry.Holder, sc stats.Collector) (*Server, error) {
	if len(c.Listeners) == 0 {
		return nil, errors.New("no listeners specified")
	}

	lcs := make([]listenConfig, len(c.Listeners))
	for i := range c.Listeners {
		lnc := &c.Listeners[i]
		if lnc.Network == "" {
			lnc.Network = "tcp"
		}
		if lnc.Address == "" {
			return nil, fmt.Errorf("listener %d: empty address", i)
		}
		lcs[i] = listenConfig{
			opts: conn.ListenerSocketOptions{
				Fwmark:          lnc.Fwmark,
				FastOpenBacklog: lnc.FastOpenBacklog,
				ReusePort:       lnc.ReusePort,
				FastOpen:        lnc.FastOpen,
			},
			network: lnc.Network,
			address: lnc.Address,
		}
	}

	app := fiber.New(fiber.Config{
		ProxyHeader:             c.ProxyHeader,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: c.EnableTrustedProxyCheck,
		TrustedProxies:          c.TrustedProxies,
		ReadTimeout:             c.ReadTimeout.Value(),
		WriteTimeout:            c.WriteTimeout.Value(),
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
	})

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger,
		Fields: []string{"latency", "status", "method", "url", "ip"},
	}))

	if len(c.AllowedClients) > 0 {
		allow, err := newClientAllowList(c.AllowedClients)
		if err != nil {
			return nil, err
		}
		app.Use(allow)
	}

	var router fiber.Router = app
	if c.SecretPath != "" {
		router = app.Group(c.SecretPath)
	}

	if c.DebugPprof {
		router.Use(pprof.New(pprof.Config{Prefix: c.SecretPath}))
	}

	api := router.Group("/api")
	api.Use(etag.New())

	dm := v1.NewDomainManager(logger, holder, sc)
	v1.Routes(api, dm)

	return &Server{
		logger: logger,
		lcs:    lcs,
		app:    app,
	}, nil
}

type listenConfig struct {
	opts    conn.ListenerSocketOptions
	network string
	address string
}

// Server is the RESTful API server.
type Server struct {
	logger *zap.Logger
	lcs    []listenConfig
	app    *fiber.App
}

// ZapField implements [regdomain.Service.ZapField].
func (s *Server) ZapField() zap.Field {
	return zap.String("service", "API server")
}

// Start starts the API server.
func (s *Server) Start(ctx context.Context) error {
	for i := range s.lcs {
		lc := &s.lcs[i]
		ln, err := lc.opts.Listen(ctx, lc.network, lc.address)
		if err != nil {
			return err
		}

		go func() {
			if err := s.app.Listener(ln); err != nil {
				s.logger.Error("Failed to serve API", zap.Error(err))
			}
		}()

		s.logger.Info("Started API server listener", zap.Stringer("listenAddress", ln.Addr()))
	}
	return nil
}

// Stop stops the API server.
func (s *Server) Stop() error {
	return s.app.Shutdown()
}
