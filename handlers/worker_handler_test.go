package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	validatorpkg "github.com/replydesk/responder/pkg/validator"
)

type fakeDrainRunner struct {
	resultToReturn domain.DrainResult
	errToReturn    error

	calls []int
}

func (f *fakeDrainRunner) RunOnce(ctx context.Context, maxBatch int) (domain.DrainResult, error) {
	f.calls = append(f.calls, maxBatch)
	return f.resultToReturn, f.errToReturn
}

// TestRunWorker_InvalidMaxBatch verifies that validation failure returns
// 422 Unprocessable Entity via the validation error handler.
func TestRunWorker_InvalidMaxBatch(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	// Runner is nil on purpose; validation must fail before it is called.
	handler := NewWorkerHandler(nil, &fakeEventLogger{})

	reqBody := `{"maxBatch": 0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/worker/run", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RunWorker(c); err != nil {
		t.Fatalf("RunWorker returned error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}

	var resp validatorpkg.ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected Success=false, got true")
	}
	if len(resp.Details) == 0 {
		t.Fatalf("expected Details to contain at least one field error")
	}
}

// TestRunWorker_ReturnsDrainResult covers the happy path with an explicit
// batch size.
func TestRunWorker_ReturnsDrainResult(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	runner := &fakeDrainRunner{
		resultToReturn: domain.DrainResult{Processed: 2, Deferred: 1, Remaining: 1},
	}
	handler := NewWorkerHandler(runner, &fakeEventLogger{})

	reqBody := `{"maxBatch": 10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/worker/run", strings.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RunWorker(c); err != nil {
		t.Fatalf("RunWorker returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if len(runner.calls) != 1 || runner.calls[0] != 10 {
		t.Fatalf("expected one drain with maxBatch=10, got %v", runner.calls)
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    domain.DrainResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response body: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected Success=true, got false")
	}
	if resp.Data.Processed != 2 || resp.Data.Deferred != 1 || resp.Data.Remaining != 1 {
		t.Fatalf("expected drain result echoed back, got %+v", resp.Data)
	}
}

// TestRunWorker_EmptyBodyUsesDefaultBatch verifies that an omitted maxBatch
// passes zero through so the worker falls back to its configured default.
func TestRunWorker_EmptyBodyUsesDefaultBatch(t *testing.T) {
	e := echo.New()
	e.Validator = validatorpkg.New()

	runner := &fakeDrainRunner{}
	handler := NewWorkerHandler(runner, &fakeEventLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/worker/run", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RunWorker(c); err != nil {
		t.Fatalf("RunWorker returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(runner.calls) != 1 || runner.calls[0] != 0 {
		t.Fatalf("expected maxBatch=0 passed through, got %v", runner.calls)
	}
}
