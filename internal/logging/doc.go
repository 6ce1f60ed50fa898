// Package logging provides structured logging for contextrank.
//
// Logger wraps Zap with:
//   - a Trace level (-2, below Debug)
//   - output to stdout or stderr, plus an optional OpenTelemetry log bridge
//   - automatic context fields (trace_id, span_id, request.id, rank.language)
//   - level-aware sampling (errors are never sampled)
//
// Create a logger from config:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "01HV...")
//	logger.Info(ctx, "sentences ranked", zap.Int("selected", n))
//
// The MCP server speaks JSON-RPC on stdout, so processes serving MCP must
// log to stderr (Output.Writer = "stderr").
//
// Book text must not be logged verbatim. Use Excerpt to attach a bounded
// prefix of a passage instead.
//
// Tests use TestLogger:
//
//	tl := logging.NewTestLogger()
//	svc := rankservice.New(cfg, tl.Logger, ...)
//	tl.AssertLogged(t, zapcore.DebugLevel, "language fallback")
package logging
