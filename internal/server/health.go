package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-sod/smote/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HandleHealth answers OK for as long as ctx is alive.
func HandleHealth(ctx context.Context) http.Handler {
	logger := logging.FromContext(ctx)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			logger.Debugf("health: shutting down")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, `{"status": "shutting down"}`)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{"status": "ok"}`)
	})
}

// NewGRPCHealth returns a grpc server exposing the standard health service
// for service, marked serving.
func NewGRPCHealth(service string) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}
