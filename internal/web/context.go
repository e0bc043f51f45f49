package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/booksheet/internal/core"
	mw "github.com/JonMunkholm/booksheet/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so mutation
// logs can name the requester.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
