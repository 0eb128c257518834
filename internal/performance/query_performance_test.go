package performance

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bovespacli/internal/config"
	"bovespacli/internal/factors"
	"bovespacli/internal/instruments"
	"bovespacli/internal/mapfile"
	"bovespacli/internal/services"
	handlers "bovespacli/internal/transport/http"
	"bovespacli/pkg/contracts/domain"
)

const symbolCount = 50

// setupRouter writes map and factor files for symbolCount instruments
func setupRouter(tb testing.TB) *chi.Mux {
	tb.Helper()
	out := tb.TempDir()
	paths := &config.Paths{
		OutputDir:      out,
		MapFilesDir:    out + "/map_files",
		FactorFilesDir: out + "/factor_files",
		CalendarFile:   out + "/holidays.txt",
		ManifestFile:   out + "/run_manifest.json",
	}

	list := make([]domain.Instrument, symbolCount)
	for i := range list {
		sym := fmt.Sprintf("T%03d3", i)
		list[i] = domain.Instrument{Symbol: sym, Name: sym, Type: domain.InstrumentTypeEquity}

		require.NoError(tb, mapfile.Write(paths.GetMapFilePath(sym), []domain.MapSegment{
			{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Symbol: "OLD" + sym[1:]},
			{Date: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), Symbol: sym},
			{Date: domain.FarFuture, Symbol: sym},
		}))

		points := make([]domain.FactorPoint, 0, 41)
		for d := 0; d < 40; d++ {
			points = append(points, domain.FactorPoint{
				Date:        time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 3*d, 0),
				PriceFactor: decimal.NewFromFloat(0.9 + float64(d)/400),
				SplitFactor: decimal.NewFromInt(1),
			})
		}
		points = append(points, domain.SentinelPoint())
		require.NoError(tb, factors.Write(paths.GetFactorFilePath(sym), points))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewDataService(paths, instruments.NewRegistry(list), 0, logger)
	return handlers.NewRouter(handlers.RouterConfig{Query: svc, Logger: logger})
}

func TestConcurrentQueries(t *testing.T) {
	router := setupRouter(t)

	var wg sync.WaitGroup
	errs := make(chan string, 200)
	for w := 0; w < 20; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				sym := fmt.Sprintf("T%03d3", (w*10+i)%symbolCount)
				for _, path := range []string{
					"/api/v1/maps/" + sym + "/resolve?date=20210101",
					"/api/v1/factors/" + sym + "?date=20180301",
				} {
					rec := httptest.NewRecorder()
					router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
					if rec.Code != http.StatusOK {
						errs <- fmt.Sprintf("%s: %d %s", path, rec.Code, rec.Body.String())
					}
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		assert.Fail(t, e)
	}
}

func BenchmarkResolve(b *testing.B) {
	router := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/maps/T0013/resolve?date=20210101", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("status %d", rec.Code)
		}
	}
}

func BenchmarkFactorAt(b *testing.B) {
	router := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/factors/T0013?date=20180301", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("status %d", rec.Code)
		}
	}
}
