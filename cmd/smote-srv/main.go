package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/buildinfo"
	smote "github.com/go-sod/smote/internal/config"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predict"
	"github.com/go-sod/smote/internal/server"
	"github.com/go-sod/smote/internal/setup"
	"github.com/go-sod/smote/internal/shutdown"
	"go.opencensus.io/stats/view"
)

const serviceName = "smote"

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	defer done()

	if err := run(ctx, done); err != nil {
		logging.FromContext(ctx).Fatal(err)
	}
}

func run(ctx context.Context, cancel func()) error {
	config := smote.Config{}
	ctx, env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)
	logger := logging.FromContext(ctx)

	manager, err := env.ProvideBalance()()
	if err != nil {
		return fmt.Errorf("balance manager provider function error: %w", err)
	}

	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: serviceName})
	if err != nil {
		return fmt.Errorf("prometheus.NewExporter: %w", err)
	}
	view.RegisterExporter(exporter)
	defer view.UnregisterExporter(exporter)

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	balanceHandler, err := balance.NewHandler(&config.Balance, manager)
	if err != nil {
		return fmt.Errorf("balance.NewHandler: %w", err)
	}
	predictHandler, err := predict.NewHandler(&config.Predict, manager)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/balance", balanceHandler)
	mux.Handle("/predict", predictHandler)
	mux.Handle("/health", server.HandleHealth(ctx))
	mux.Handle("/metrics", exporter)
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	errCh := make(chan error, 2)
	go func() {
		errCh <- srv.ServeHTTPHandler(ctx, mux)
	}()

	if config.GRPCAddr != "" {
		grpcSrv, err := server.New(config.GRPCAddr)
		if err != nil {
			return fmt.Errorf("server.New: %w", err)
		}
		gs, hs := server.NewGRPCHealth(serviceName)
		defer hs.Shutdown()
		go func() {
			errCh <- grpcSrv.ServeGRPC(ctx, gs)
		}()
		logger.Infof("grpc health listening on %s", grpcSrv.Addr())
	}

	logger.Infof("listening on %s", srv.Addr())
	select {
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return nil
	}
}
