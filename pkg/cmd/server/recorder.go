package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	nats "github.com/nats-io/nats.go"
	"github.com/nsyszr/flowpilot/config"
	"github.com/nsyszr/flowpilot/pkg/api"
	"github.com/nsyszr/flowpilot/pkg/controller"
	"github.com/nsyszr/flowpilot/pkg/export/sink"
	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/driver"
	"github.com/nsyszr/flowpilot/pkg/transport/memory"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type recorderServer struct {
	c *config.Config

	quitCh chan bool
	doneCh chan bool

	nc      *nats.Conn
	stores  *storage.Initializer
	ctrl    *controller.Controller
	capture *memory.Channel
}

func newRecorderServer(c *config.Config) (*recorderServer, error) {
	s := &recorderServer{
		c:      c,
		quitCh: make(chan bool),
		doneCh: make(chan bool),
	}

	stores, err := driver.NewInitializer(c)
	if err != nil {
		return nil, err
	}
	s.stores = stores

	exportSink, err := sink.New(context.Background(), c)
	if err != nil {
		return nil, err
	}

	if c.NATSServerURL != "" {
		nc, err := nats.Connect(c.NATSServerURL,
			nats.Name("flowpilot-recorder"),
			nats.DrainTimeout(10*time.Second),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Errorf("nats error: %s", err)
			}),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					log.Warnf("nats disconnected: %s", err)
				}
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Infof("nats reconnected to %s", nc.ConnectedUrl())
			}))
		if err != nil {
			return nil, err
		}
		s.nc = nc
	}

	s.ctrl = controller.NewController(s.nc, s.stores, exportSink)

	// Interactions posted to the API reach the controller in-process.
	s.capture = memory.NewChannel(s.ctrl, memory.DefaultSize)

	return s, nil
}

func (s *recorderServer) Serve() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	ctx := context.Background()

	// Open the store right away so a broken configuration shows up at
	// startup. Handlers initialize again on every message.
	if _, err := s.stores.Init(ctx); err != nil {
		log.Errorf("Failed to initialize storage service: %s", err)
	} else {
		log.Info("Storage service initialized successfully")
	}

	if s.c.SeedDebug {
		if _, err := s.ctrl.Seed(ctx); err != nil {
			log.Errorf("Failed to seed storage: %s", err)
		}
	}

	if s.nc != nil {
		if err := s.ctrl.Subscribe(); err != nil {
			log.Errorf("Failed to subscribe to nats: %s", err)
		}
	} else {
		log.Warn("NATS_URL is empty, events are accepted over HTTP only")
	}

	// Register API endpoints
	apiHandler := api.NewHandler(s.nc, s.stores, s.ctrl, s.capture)
	apiHandler.RegisterRoutes(e)

	go func() {
		log.WithFields(log.Fields{
			"host": s.c.BindHost,
			"port": s.c.BindPort,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.c.BindHost, s.c.BindPort)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait until receiving the quit signal
	<-s.quitCh
	log.Info("Shutdown signal received")

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}

	// We've done!
	s.doneCh <- true
}

func (s *recorderServer) Shutdown() {
	s.ctrl.Unsubscribe()
	if s.nc != nil {
		s.nc.Drain()
	}

	// Send the quit signal to the server.Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}

	s.capture.Close()
	if dropped := s.capture.Dropped(); dropped > 0 {
		log.Warnf("%d captured events were dropped", dropped)
	}

	if err := s.stores.Close(); err != nil {
		log.Errorf("Failed to close storage: %s", err)
	}
}

func RunServeRecorder(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		setLogLevel(c.LogLevel)

		s, err := newRecorderServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		go s.Serve()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt, syscall.SIGTERM)
		<-quitCh

		// Shutdown the server
		s.Shutdown()
	}
}
