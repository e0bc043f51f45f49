package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "requester_ip"
	ctxKeyUserAgent contextKey = "requester_ua"
)

// ContextWithIPAddress adds the requester's IP address to ctx. Composite
// operations include it in their log entries.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the requester's User-Agent to ctx.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// requesterAttrs returns the requester fields present in ctx as slog args.
func requesterAttrs(ctx context.Context) []any {
	var args []any
	if ip := GetIPAddressFromContext(ctx); ip != "" {
		args = append(args, "ip", ip)
	}
	if ua := GetUserAgentFromContext(ctx); ua != "" {
		args = append(args, "user_agent", ua)
	}
	return args
}
