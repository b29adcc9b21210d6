// Package agent wires the socket tracer together with fx.
//
// The graph is built from a config.Config: the zap logger, the Prometheus
// tracing metrics, every record sink named in Config.Sinks behind one
// sink.Async pipeline, and the interceptor with its per-thread shim.
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	a, err := agent.Start(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer a.Stop(ctx)
//
//	fd, err := a.Shim().Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
//
// Options exposes the same graph for applications that own their fx.App.
package agent
