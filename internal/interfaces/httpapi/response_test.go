package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.Wrap(usecase.ErrInvalidInput, "bad payload"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: connection refused to 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"prize rule sum", errors.Wrap(prize.ErrPercentageSumNot100, "contest rules"), http.StatusBadRequest, "invalidPrizeRules"},
		{"prize rule precision", errors.Wrap(prize.ErrPercentagePrecision, "contest rules"), http.StatusBadRequest, "invalidPrizeRules"},
		{"invalid input", usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput"},
		{"not found", errors.Wrap(usecase.ErrNotFound, "contest"), http.StatusNotFound, "notFound"},
		{"already distributed", usecase.ErrAlreadyDistributed, http.StatusConflict, "alreadyDistributed"},
		{"in progress", usecase.ErrDistributionInProgress, http.StatusConflict, "distributionInProgress"},
		{"invalid state", usecase.ErrInvalidState, http.StatusConflict, "invalidState"},
		{"no rules", usecase.ErrNoRulesDefined, http.StatusUnprocessableEntity, "noRulesDefined"},
		{"insufficient", usecase.ErrInsufficientParticipants, http.StatusUnprocessableEntity, "insufficientParticipants"},
		{"no participants", usecase.ErrNoParticipants, http.StatusUnprocessableEntity, "noParticipants"},
		{"payout", errors.Wrap(usecase.ErrPayoutFailure, "gateway 500"), http.StatusBadGateway, "payoutFailure"},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"dependency", usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internalError"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.err)
			if got.HTTPStatus != tc.status {
				t.Fatalf("status: expected %d, got %d", tc.status, got.HTTPStatus)
			}
			if got.Reason != tc.reason {
				t.Fatalf("reason: expected %s, got %s", tc.reason, got.Reason)
			}
		})
	}
}
