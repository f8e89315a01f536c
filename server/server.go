package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/techagentng/carefront/config"
	"github.com/techagentng/carefront/realtime"
	"github.com/techagentng/carefront/services"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Server wires the HTTP surface to the services.
type Server struct {
	Config             *config.Config
	Logger             *zap.Logger
	IdentityVerifier   services.IdentityVerifier
	MessageService     services.MessageService
	DoctorService      services.DoctorService
	AppointmentService services.AppointmentService
	Hub                *realtime.Hub
	Gateway            http.Handler
	// RateLimitStore throttles public submissions; nil disables throttling.
	RateLimitStore ratelimit.Store
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// disconnects realtime clients.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go func() {
		if err := s.Hub.Run(hubCtx); err != nil {
			s.Logger.Error("realtime fan-out stopped, delivering to local connections only", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", s.Config.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		s.Logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	cancelHub()
	s.Hub.Close()
	return err
}
