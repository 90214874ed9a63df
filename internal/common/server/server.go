package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/AlibekovAA/authd/internal/common/constants"
	"github.com/AlibekovAA/authd/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Run serves until ctx is cancelled, then drains: keep-alives are switched
// off, hooks run within the drain window and the server shuts down within
// the shutdown window. A listen failure is returned immediately.
func Run(ctx context.Context, server *http.Server, log *logger.Logger, serviceName string, hooks ...ShutdownHook) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s service listening on %s", serviceName, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Errorf("failed to start %s service: %v", serviceName, err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down %s service...", serviceName)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, constants.DrainTimeout)
	defer drainCancel()

	log.Infof("%s service: stopping accepting new connections (drain period: %v)", serviceName, constants.DrainTimeout)
	server.SetKeepAlivesEnabled(false)

	if len(hooks) > 0 {
		log.Infof("%s service: executing shutdown hooks", serviceName)
		for i, hook := range hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("%s service: shutdown hook %d failed: %v", serviceName, i, err)
			}
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service forced to shutdown: %v", serviceName, err)
		return err
	}

	log.Infof("%s service stopped gracefully", serviceName)
	return nil
}
