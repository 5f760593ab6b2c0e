package mid

import (
	"context"
	"net/http"

	"github.com/dimfeld/httptreemux/v5"
	"github.com/helios-protocol/microblock/business/sys/metrics"
	"github.com/helios-protocol/microblock/foundation/web"
)

// Metrics updates program counters for every request.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return web.NewShutdownError("web value missing from context")
			}

			// Call the next handler.
			err = handler(ctx, w, r)

			// Label by the matched route so path parameters do not create
			// a series per value.
			route := r.URL.Path
			if data := httptreemux.ContextData(r.Context()); data != nil {
				route = data.Route()
			}

			status := v.StatusCode
			if err != nil && status == 0 {
				status = http.StatusInternalServerError
			}
			metrics.ObserveRequest(route, status, v.Now)

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
