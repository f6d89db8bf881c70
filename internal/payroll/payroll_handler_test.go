package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"govpay/internal/payroll"
	payrollerrors "govpay/internal/payroll/errors"
	"govpay/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	startRunFn     func(ctx context.Context, actorID string, req payroll.StartRunRequest) (payroll.RunResult, error)
	approveFn      func(ctx context.Context, actorID, runID string) (payroll.PayrollRunResponse, error)
	getRunsFn      func(ctx context.Context, filter payroll.GetRunsFilterRequest) ([]payroll.PayrollRunResponse, error)
	getRunByIDFn   func(ctx context.Context, id string) (payroll.PayrollRunResponse, error)
	getRunSlipsFn  func(ctx context.Context, runID string) ([]payroll.PayslipResponse, error)
	getBreakdownFn func(ctx context.Context, payslipID string) (payroll.PayslipResponse, error)
	getHistoryFn   func(ctx context.Context, staffID string) ([]payroll.PayslipResponse, error)
}

func (f *fakePayrollService) StartRun(ctx context.Context, actorID string, req payroll.StartRunRequest) (payroll.RunResult, error) {
	return f.startRunFn(ctx, actorID, req)
}

func (f *fakePayrollService) Approve(ctx context.Context, actorID, runID string) (payroll.PayrollRunResponse, error) {
	return f.approveFn(ctx, actorID, runID)
}

func (f *fakePayrollService) GetRuns(ctx context.Context, filter payroll.GetRunsFilterRequest) ([]payroll.PayrollRunResponse, error) {
	return f.getRunsFn(ctx, filter)
}

func (f *fakePayrollService) GetRunByID(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	return f.getRunByIDFn(ctx, id)
}

func (f *fakePayrollService) GetRunPayslips(ctx context.Context, runID string) ([]payroll.PayslipResponse, error) {
	return f.getRunSlipsFn(ctx, runID)
}

func (f *fakePayrollService) GetPayslipBreakdown(ctx context.Context, payslipID string) (payroll.PayslipResponse, error) {
	return f.getBreakdownFn(ctx, payslipID)
}

func (f *fakePayrollService) GetStaffPayslipHistory(ctx context.Context, staffID string) ([]payroll.PayslipResponse, error) {
	return f.getHistoryFn(ctx, staffID)
}

func newTestContext(t *testing.T, method, target, body, actorID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if actorID != "" {
		req = req.WithContext(contextutil.WithUserID(req.Context(), actorID))
	}
	c.Request = req
	return c, w
}

func TestPayrollHandler_StartRun(t *testing.T) {
	actorID := uuid.NewString()

	svc := &fakePayrollService{
		startRunFn: func(_ context.Context, aid string, req payroll.StartRunRequest) (payroll.RunResult, error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, "2026-02", req.Period)
			return payroll.RunResult{
				Run: payroll.PayrollRunResponse{
					ID:     uuid.NewString(),
					Period: req.Period,
					Status: payroll.StatusProcessed,
				},
				ProcessedStaffIDs: []string{uuid.NewString()},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(t, http.MethodPost, "/payroll-runs", `{"period":"2026-02"}`, actorID)

	h.StartRun(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_StartRun_Duplicate(t *testing.T) {
	svc := &fakePayrollService{
		startRunFn: func(_ context.Context, _ string, _ payroll.StartRunRequest) (payroll.RunResult, error) {
			return payroll.RunResult{}, payrollerrors.ErrDuplicateRun
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(t, http.MethodPost, "/payroll-runs", `{"period":"2026-02"}`, uuid.NewString())

	h.StartRun(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestPayrollHandler_StartRun_MissingPeriod(t *testing.T) {
	h := payroll.NewHandler(&fakePayrollService{})
	c, w := newTestContext(t, http.MethodPost, "/payroll-runs", `{}`, uuid.NewString())

	h.StartRun(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayrollHandler_GetRunById_NotFound(t *testing.T) {
	svc := &fakePayrollService{
		getRunByIDFn: func(_ context.Context, _ string) (payroll.PayrollRunResponse, error) {
			return payroll.PayrollRunResponse{}, payrollerrors.ErrRunNotFound
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(t, http.MethodGet, "/payroll-runs/nope", "", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	h.GetRunById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayrollHandler_Approve(t *testing.T) {
	runID := uuid.NewString()
	svc := &fakePayrollService{
		approveFn: func(_ context.Context, _, id string) (payroll.PayrollRunResponse, error) {
			assert.Equal(t, runID, id)
			return payroll.PayrollRunResponse{ID: id, Status: payroll.StatusApproved}, nil
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(t, http.MethodPost, "/payroll-runs/"+runID+"/approve", "", uuid.NewString())
	c.Params = gin.Params{{Key: "id", Value: runID}}

	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}
