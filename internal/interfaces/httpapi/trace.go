package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("pickleball-fantasy/internal/interfaces/httpapi")

// pathAttributes maps route wildcards to span attribute keys.
var pathAttributes = []struct {
	wildcard string
	key      string
}{
	{wildcard: "matchID", key: "match_id"},
	{wildcard: "teamID", key: "team_id"},
	{wildcard: "contestID", key: "contest_id"},
	{wildcard: "tournamentID", key: "tournament_id"},
}

// startHandlerSpan opens "httpapi.Handler.<op>" under the request span and
// tags it with the matched route and its ids. Untraced requests get a no-op span.
func startHandlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}

	return apiTracer.Start(ctx, "httpapi.Handler."+op, trace.WithAttributes(handlerAttributes(r)...))
}

func handlerAttributes(r *http.Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(pathAttributes)+1)
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	for _, p := range pathAttributes {
		if v := r.PathValue(p.wildcard); v != "" {
			attrs = append(attrs, attribute.String(p.key, v))
		}
	}
	return attrs
}
