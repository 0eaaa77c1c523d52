// Package telemetry wires OpenTelemetry tracing and metrics for reqlogd.
//
// Spans and metrics are exported over OTLP (gRPC or HTTP/protobuf) to a
// collector. When telemetry is disabled, Tracer and Meter fall back to the
// global no-op providers, so instrumented code needs no nil checks.
//
//	tel, err := telemetry.New(ctx, cfg, telemetry.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Configuration:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// Provider failures do not stop the process: the instance is marked degraded
// and the failure is logged.
//
// Tests use NewTestTelemetry, which records spans in memory and exposes a
// manual metric reader.
package telemetry
