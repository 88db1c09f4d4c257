package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/motormarket/motormarket/internal/common/config"
	"github.com/motormarket/motormarket/internal/common/discovery"
	"github.com/motormarket/motormarket/internal/common/logger"
)

type RunHTTPOptions struct {
	ShutdownTimeout time.Duration
}

func defaultRunHTTPOptions() RunHTTPOptions {
	return RunHTTPOptions{
		ShutdownTimeout: 5 * time.Second,
	}
}

// RunHTTPServer is the shared HTTP startup template:
// - serve the gin engine on the configured address
// - register with Consul (HTTP health check) when enabled
// - shut down gracefully on SIGINT/SIGTERM
func RunHTTPServer(cfg *config.Config, log logger.Logger, engine *gin.Engine, opts ...func(*RunHTTPOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}
	if engine == nil {
		return fmt.Errorf("engine is nil")
	}

	o := defaultRunHTTPOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	// Consul registration failing never blocks startup.
	if cfg.Consul.Enabled {
		consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
		if err != nil {
			log.Warnf("failed to connect to Consul: %v", err)
		} else {
			serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
			registry := discovery.NewServiceRegistry(
				consulClient,
				serviceID,
				cfg.Server.Name,
				cfg.Server.Host,
				cfg.Server.Port,
				[]string{"http"},
			)
			if err := registry.Register(); err != nil {
				log.Warnf("failed to register service to Consul: %v", err)
			} else {
				log.Infof("Service registered to Consul: %s", serviceID)
				defer func() {
					if err := registry.Deregister(); err != nil {
						log.Warnf("failed to deregister service from Consul: %v", err)
					}
				}()
			}
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Infof("%s starting on %s:%d", cfg.Server.Name, cfg.Server.Host, cfg.Server.Port)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown timeout, forcing close: %v", err)
		_ = srv.Close()
	} else {
		log.Info("http server stopped gracefully")
	}

	return nil
}

// WithShutdownTimeout changes how long graceful shutdown may take.
func WithShutdownTimeout(d time.Duration) func(*RunHTTPOptions) {
	return func(o *RunHTTPOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}
