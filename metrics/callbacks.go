package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
)

type startTimeKey struct{}

// CallbackHandler logs and times every eino component run it sees. Install
// it once with callbacks.AppendGlobalHandlers.
func CallbackHandler() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			component, name := runLabels(info)
			slog.Debug("Component started", "component", component, "name", name)
			return context.WithValue(ctx, startTimeKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			component, name := runLabels(info)
			elapsed := sinceStart(ctx)
			RecordComponentRun(component, name, "success", elapsed.Seconds())
			slog.Debug("Component finished", "component", component, "name", name, "elapsed", elapsed)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			component, name := runLabels(info)
			elapsed := sinceStart(ctx)
			RecordComponentRun(component, name, "error", elapsed.Seconds())
			slog.Warn("Component failed", "component", component, "name", name, "elapsed", elapsed, "error", err)
			return ctx
		}).
		Build()
}

func runLabels(info *callbacks.RunInfo) (string, string) {
	if info == nil {
		return "unknown", "unknown"
	}
	component := string(info.Component)
	if component == "" {
		component = info.Type
	}
	return component, info.Name
}

func sinceStart(ctx context.Context) time.Duration {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
