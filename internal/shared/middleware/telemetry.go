package middleware

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const linksPrefix = "/api/social/links/"

// Telemetry traces and meters every request except health checks. Span names
// use the route so per-provider link URLs share one name.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "socialnexus-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeName(r.URL.Path)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)
}

func routeName(path string) string {
	if strings.HasPrefix(path, linksPrefix) && len(path) > len(linksPrefix) {
		return linksPrefix + "{provider}"
	}
	return path
}
