package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/operations"
	"bovespacli/internal/services"
	"bovespacli/internal/shared/testutil"
	"bovespacli/pkg/contracts"
	api "bovespacli/pkg/contracts/api/v1"
	"bovespacli/pkg/contracts/domain"
)

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Instruments(typ domain.InstrumentType) []domain.Instrument {
	args := m.Called(typ)
	return args.Get(0).([]domain.Instrument)
}

func (m *MockQueryService) MapFile(ctx context.Context, symbol string) ([]domain.MapSegment, error) {
	args := m.Called(symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MapSegment), args.Error(1)
}

func (m *MockQueryService) Resolve(ctx context.Context, symbol string, date time.Time) (string, error) {
	args := m.Called(symbol, date)
	return args.String(0), args.Error(1)
}

func (m *MockQueryService) Factors(ctx context.Context, symbol string) ([]domain.FactorPoint, error) {
	args := m.Called(symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactorPoint), args.Error(1)
}

func (m *MockQueryService) FactorAt(ctx context.Context, symbol string, date time.Time) (domain.FactorPoint, error) {
	args := m.Called(symbol, date)
	return args.Get(0).(domain.FactorPoint), args.Error(1)
}

func (m *MockQueryService) TradingDays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	args := m.Called(from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockQueryService) LatestRun(ctx context.Context) (*operations.RunManifest, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.RunManifest), args.Error(1)
}

// MockHealthService is a mock implementation of HealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() contracts.VersionInfo {
	return m.Called().Get(0).(contracts.VersionInfo)
}

func serve(t *testing.T, q QueryService, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	router := NewRouter(RouterConfig{Query: q, Health: new(MockHealthService), Logger: logger})
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestQueryHandler_GetInstruments(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockQueryService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:   "all instruments",
			target: "/api/v1/instruments",
			setupMock: func(m *MockQueryService) {
				m.On("Instruments", domain.InstrumentType("")).Return([]domain.Instrument{
					{Symbol: "PETR4", Name: "Petrobras PN", Type: domain.InstrumentTypeEquity},
					{Symbol: "WINJ24", Name: "Mini Ibovespa", Type: domain.InstrumentTypeFuture},
				})
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:   "filtered by type",
			target: "/api/v1/instruments?type=EQUITY",
			setupMock: func(m *MockQueryService) {
				m.On("Instruments", domain.InstrumentTypeEquity).Return([]domain.Instrument{
					{Symbol: "PETR4", Name: "Petrobras PN", Type: domain.InstrumentTypeEquity},
				})
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "unknown type",
			target:         "/api/v1/instruments?type=bond",
			setupMock:      func(m *MockQueryService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			tt.setupMock(svc)

			rec := serve(t, svc, http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp api.InstrumentsResponse
				decode(t, rec, &resp)
				assert.Equal(t, tt.expectedCount, resp.Count)
				assert.Len(t, resp.Instruments, tt.expectedCount)
			} else {
				assert.Contains(t, rec.Body.String(), "INVALID_PARAMETER")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestQueryHandler_GetMapFile(t *testing.T) {
	rows := []domain.MapSegment{
		{Date: testutil.Date(2024, 1, 31), Symbol: "PETR3"},
		{Date: domain.FarFuture, Symbol: "PETR4"},
	}

	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockQueryService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "map rows",
			target: "/api/v1/maps/petr4",
			setupMock: func(m *MockQueryService) {
				m.On("MapFile", "PETR4").Return(rows, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"PETR4","rows":[{"date":"20240131","symbol":"PETR3"},{"date":"20491231","symbol":"PETR4"}]}`,
		},
		{
			name:   "missing map file",
			target: "/api/v1/maps/VALE3",
			setupMock: func(m *MockQueryService) {
				m.On("MapFile", "VALE3").Return(nil, apperrors.NewNotFoundError("map file for VALE3"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"NOT_FOUND"`,
		},
		{
			name:   "unparseable map file",
			target: "/api/v1/maps/VALE3",
			setupMock: func(m *MockQueryService) {
				m.On("MapFile", "VALE3").Return(nil, apperrors.NewMalformedRecordError("vale3.csv:1", "invalid map row", nil))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"UNPROCESSABLE_ENTITY"`,
		},
		{
			name:           "invalid symbol",
			target:         "/api/v1/maps/PE",
			setupMock:      func(m *MockQueryService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_PARAMETER"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			tt.setupMock(svc)

			rec := serve(t, svc, http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestQueryHandler_Resolve(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockQueryService)
		expectedStatus int
		expectedTraded string
	}{
		{
			name:   "before rename",
			target: "/api/v1/maps/PETR4/resolve?date=20240131",
			setupMock: func(m *MockQueryService) {
				m.On("Resolve", "PETR4", testutil.Date(2024, 1, 31)).Return("PETR3", nil)
			},
			expectedStatus: http.StatusOK,
			expectedTraded: "PETR3",
		},
		{
			name:   "defaults to today",
			target: "/api/v1/maps/PETR4/resolve",
			setupMock: func(m *MockQueryService) {
				m.On("Resolve", "PETR4", mock.AnythingOfType("time.Time")).Return("PETR4", nil)
			},
			expectedStatus: http.StatusOK,
			expectedTraded: "PETR4",
		},
		{
			name:           "dashed date",
			target:         "/api/v1/maps/PETR4/resolve?date=2024-01-31",
			setupMock:      func(m *MockQueryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "impossible date",
			target:         "/api/v1/maps/PETR4/resolve?date=20241340",
			setupMock:      func(m *MockQueryService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			tt.setupMock(svc)

			rec := serve(t, svc, http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp api.ResolveResponse
				decode(t, rec, &resp)
				assert.Equal(t, "PETR4", resp.Symbol)
				assert.Equal(t, tt.expectedTraded, resp.TradedAs)
				assert.Len(t, resp.Date, 8)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestQueryHandler_GetFactors(t *testing.T) {
	point := domain.FactorPoint{
		Date:        testutil.Date(2024, 2, 15),
		PriceFactor: decimal.RequireFromString("0.95"),
		SplitFactor: decimal.RequireFromString("0.5"),
	}

	t.Run("series", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Factors", "PETR4").Return([]domain.FactorPoint{point, domain.SentinelPoint()}, nil)

		rec := serve(t, svc, http.MethodGet, "/api/v1/factors/PETR4")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.FactorsResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Rows, 2)
		assert.Empty(t, resp.Date)
		assert.Equal(t, api.FactorRowResponse{Date: "20240215", PriceFactor: "0.95", SplitFactor: "0.5", Combined: "0.475"}, resp.Rows[0])
		assert.Equal(t, "20491231", resp.Rows[1].Date)
		svc.AssertExpectations(t)
	})

	t.Run("point in force", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("FactorAt", "PETR4", testutil.Date(2024, 1, 10)).Return(point, nil)

		rec := serve(t, svc, http.MethodGet, "/api/v1/factors/PETR4?date=20240110")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.FactorsResponse
		decode(t, rec, &resp)
		assert.Equal(t, "20240110", resp.Date)
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "0.475", resp.Rows[0].Combined)
		svc.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Factors", "VALE3").Return(nil, apperrors.NewNotFoundError("factor file for VALE3"))

		rec := serve(t, svc, http.MethodGet, "/api/v1/factors/VALE3")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestQueryHandler_GetCalendar(t *testing.T) {
	days := []time.Time{testutil.Date(2024, 1, 22), testutil.Date(2024, 1, 23), testutil.Date(2024, 1, 24)}

	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockQueryService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "bounded span",
			target: "/api/v1/calendar?from=20240122&to=20240124",
			setupMock: func(m *MockQueryService) {
				m.On("TradingDays", testutil.Date(2024, 1, 22), testutil.Date(2024, 1, 24)).Return(days, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"from":"20240122","to":"20240124","count":3,"days":["20240122","20240123","20240124"]}`,
		},
		{
			name:   "open span",
			target: "/api/v1/calendar",
			setupMock: func(m *MockQueryService) {
				m.On("TradingDays", time.Time{}, time.Time{}).Return(days, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":3`,
		},
		{
			name:           "reversed span",
			target:         "/api/v1/calendar?from=20240124&to=20240122",
			setupMock:      func(m *MockQueryService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_PARAMETER"`,
		},
		{
			name:   "no calendar yet",
			target: "/api/v1/calendar",
			setupMock: func(m *MockQueryService) {
				m.On("TradingDays", time.Time{}, time.Time{}).Return(nil, services.ErrNoCalendar)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `trading calendar not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			tt.setupMock(svc)

			rec := serve(t, svc, http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestQueryHandler_GetLatestRun(t *testing.T) {
	t.Run("manifest", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("LatestRun").Return(&operations.RunManifest{ID: "run-1", Status: "completed", ErrorCount: 2}, nil)

		rec := serve(t, svc, http.MethodGet, "/api/v1/runs/latest")

		require.Equal(t, http.StatusOK, rec.Code)
		var m operations.RunManifest
		decode(t, rec, &m)
		assert.Equal(t, "run-1", m.ID)
		assert.Equal(t, 2, m.ErrorCount)
	})

	t.Run("no run yet", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("LatestRun").Return(nil, services.ErrNoRun)

		rec := serve(t, svc, http.MethodGet, "/api/v1/runs/latest")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "run manifest not found")
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("LatestRun").Return(nil, apperrors.NewStorageError("failed to stat run manifest", nil))

		rec := serve(t, svc, http.MethodGet, "/api/v1/runs/latest")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
