package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestHandlerAttributes_RouteAndIDs(t *testing.T) {
	var got []attribute.KeyValue
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/admin/contests/{contestID}/distribute", func(_ http.ResponseWriter, r *http.Request) {
		got = handlerAttributes(r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/admin/contests/contest-7/distribute", nil))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("http.route", "POST /v1/admin/contests/{contestID}/distribute"),
		attribute.String("contest_id", "contest-7"),
	}, got)
}

func TestStartHandlerSpan_UntracedRequestIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/contests/contest-1/rankings", nil)

	ctx, span := startHandlerSpan(req, "ListRankings")
	defer span.End()

	assert.Equal(t, req.Context(), ctx)
	assert.False(t, span.SpanContext().IsValid())
	assert.Equal(t, trace.SpanFromContext(context.Background()), span)
}
