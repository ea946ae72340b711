package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yongpi/putil/plog"
	"golang.org/x/sync/errgroup"

	"github.com/yongpi/fpool"
	"github.com/yongpi/fpool/internal/admin"
	"github.com/yongpi/fpool/internal/config"
	"github.com/yongpi/fpool/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		plog.Errorf("[fpool-web]: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logger fpool.Logger = fpool.DefaultLogger()
	if cfg.Log.Debug {
		logger = plog.NewLogger(plog.DEBUG)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts, err := cfg.PoolOptions()
	if err != nil {
		return err
	}
	opts = append(opts, fpool.WithLogger(logger), fpool.WithMetrics(fpool.NewMetrics("fpool", "", reg)))

	pool, err := fpool.New(cfg.Pool.Workers, opts...)
	if err != nil {
		return err
	}

	sleepDelay, _ := cfg.SleepDelay()
	srv, err := server.New(pool, logger, sleepDelay)
	if err != nil {
		pool.Shutdown()
		return err
	}

	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		pool.Shutdown()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})

	if cfg.Admin.Enabled {
		adminSrv := &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           admin.NewRouter(pool, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Debugf("[fpool-web]: admin listening on %s", cfg.Admin.Addr)
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return adminSrv.Shutdown(shutdownCtx)
		})
	}

	serveErr := g.Wait()

	logger.Debugf("[fpool-web]: shutting down, pending = %d, active = %d", pool.Pending(), pool.Active())
	timeout, _ := cfg.ShutdownTimeout()
	shutdownCtx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, timeout)
		defer cancel()
	}
	if err := pool.ShutdownContext(shutdownCtx); err != nil {
		logger.Errorf("[fpool-web]: pool did not drain in %v, err = %v", timeout, err)
		return errors.Join(serveErr, err)
	}
	return serveErr
}
