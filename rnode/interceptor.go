package rnode

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RenderHandler is the actual render call of a node.
type RenderHandler func(ctx context.Context, info Info, f Frame) bool

// RenderInterceptor wraps a node render with custom logic. The signature
// matches gRPC's interceptor pattern: (ctx, req, handler) -> result.
type RenderInterceptor func(ctx context.Context, info Info, f Frame, next RenderHandler) bool

// InterceptorChain runs interceptors outer-to-inner: the first interceptor
// wraps all others.
type InterceptorChain struct {
	interceptors []RenderInterceptor
}

// ChainInterceptors creates a new interceptor chain.
func ChainInterceptors(interceptors ...RenderInterceptor) *InterceptorChain {
	return &InterceptorChain{
		interceptors: interceptors,
	}
}

// Len returns the number of interceptors in the chain.
func (c *InterceptorChain) Len() int {
	return len(c.interceptors)
}

// Execute runs the chain followed by the final handler.
func (c *InterceptorChain) Execute(ctx context.Context, info Info, f Frame, final RenderHandler) bool {
	if len(c.interceptors) == 0 {
		return final(ctx, info, f)
	}

	handler := final
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		interceptor := c.interceptors[i]
		next := handler
		handler = func(ctx context.Context, info Info, f Frame) bool {
			return interceptor(ctx, info, f, next)
		}
	}

	return handler(ctx, info, f)
}

// LoggingInterceptor logs every node render at debug level and failures at
// warn level.
func LoggingInterceptor(logger *slog.Logger) RenderInterceptor {
	return func(ctx context.Context, info Info, f Frame, next RenderHandler) bool {
		logger.Debug("Rendering node", "node", info.ID, "name", info.Name, "frame", f.Index)
		ok := next(ctx, info, f)
		if !ok {
			logger.Warn("Node render failed", "node", info.ID, "name", info.Name, "frame", f.Index)
		}
		return ok
	}
}

// TimingInterceptor reports the wall time of every node render.
func TimingInterceptor(observe func(info Info, d time.Duration, ok bool)) RenderInterceptor {
	return func(ctx context.Context, info Info, f Frame, next RenderHandler) bool {
		start := time.Now()
		ok := next(ctx, info, f)
		observe(info, time.Since(start), ok)
		return ok
	}
}

// RecoverInterceptor turns a panicking render into a failed render.
func RecoverInterceptor(logger *slog.Logger) RenderInterceptor {
	return func(ctx context.Context, info Info, f Frame, next RenderHandler) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Node render panicked", "node", info.ID, "name", info.Name, "panic", fmt.Sprint(r))
				ok = false
			}
		}()
		return next(ctx, info, f)
	}
}
