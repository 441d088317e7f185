// Package log is the structured logging layer of the JSON-RPC client.
//
// Loggers are passed explicitly or through a context:
//
//	lg := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx = log.SetContextLogger(ctx, lg.WithName("jsonrpc"))
//	log.FromContext(ctx).Info("sending", "method", "add")
//
// When the context holds an OpenTelemetry span, SetContextLogger wraps the
// logger in a SpanLogger and every entry is also recorded as a span event.
// Error and Fatal entries set the span status to Error.
package log
