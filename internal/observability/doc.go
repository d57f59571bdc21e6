// Package observability provides logging, metrics, and tracing for the
// router.
//
// # Logging
//
// The Logger interface wraps zap:
//
//	logger, err := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("dispatched",
//	    observability.String("route", "GET /sloths"),
//	    observability.Int("status", 200),
//	)
//
// # Metrics
//
// Dispatch outcomes, chain errors, and the hit counter are exported on
// a dedicated registry:
//
//	metrics := observability.NewMetrics("avarouter")
//	http.Handle("/metrics", metrics.Handler())
//
// # Tracing
//
// OpenTelemetry spans with optional OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    Enabled:      true,
//	    OTLPEndpoint: "localhost:4317",
//	    SamplingRate: 1,
//	})
//	defer tracer.Shutdown(ctx)
package observability
