package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "bovespacli/internal/errors"
	"bovespacli/internal/services"
	api "bovespacli/pkg/contracts/api/v1"
	"bovespacli/pkg/contracts/domain"
)

// QueryHandler serves map files, factor files, the calendar and run status
type QueryHandler struct {
	service  QueryService
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewQueryHandler creates a query handler
func NewQueryHandler(service QueryService, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "query")),
		now:      time.Now,
	}
}

// Routes returns the /api/v1 routes
func (h *QueryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/instruments", h.GetInstruments)
	r.Route("/maps/{symbol}", func(r chi.Router) {
		r.Get("/", h.GetMapFile)
		r.Get("/resolve", h.Resolve)
	})
	r.Get("/factors/{symbol}", h.GetFactors)
	r.Get("/calendar", h.GetCalendar)
	r.Get("/runs/latest", h.GetLatestRun)
	return r
}

// GetInstruments handles GET /api/v1/instruments
func (h *QueryHandler) GetInstruments(w http.ResponseWriter, r *http.Request) {
	req := api.InstrumentsRequest{Type: strings.ToLower(r.URL.Query().Get("type"))}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, apierrors.InvalidParameter("type", err))
		return
	}

	list := h.service.Instruments(domain.InstrumentType(req.Type))
	resp := api.InstrumentsResponse{Count: len(list), Instruments: make([]api.InstrumentResponse, len(list))}
	for i, inst := range list {
		resp.Instruments[i] = api.InstrumentResponse{Symbol: inst.Symbol, Name: inst.Name, Type: string(inst.Type)}
	}
	render.JSON(w, r, resp)
}

// GetMapFile handles GET /api/v1/maps/{symbol}
func (h *QueryHandler) GetMapFile(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbol(w, r)
	if !ok {
		return
	}
	rows, err := h.service.MapFile(r.Context(), symbol)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewMapResponse(symbol, rows))
}

// Resolve handles GET /api/v1/maps/{symbol}/resolve. The date defaults to today.
func (h *QueryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbol(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r, "date")
	if !ok {
		return
	}
	if date.IsZero() {
		now := h.now().UTC()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	tradedAs, err := h.service.Resolve(r.Context(), symbol, date)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, api.ResolveResponse{Symbol: symbol, Date: api.FormatDate(date), TradedAs: tradedAs})
}

// GetFactors handles GET /api/v1/factors/{symbol}. With ?date= only the
// point in force on that date is returned.
func (h *QueryHandler) GetFactors(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbol(w, r)
	if !ok {
		return
	}
	date, ok := h.date(w, r, "date")
	if !ok {
		return
	}

	resp := api.FactorsResponse{Symbol: symbol}
	if date.IsZero() {
		points, err := h.service.Factors(r.Context(), symbol)
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		resp.Rows = make([]api.FactorRowResponse, len(points))
		for i, p := range points {
			resp.Rows[i] = api.NewFactorRow(p)
		}
	} else {
		p, err := h.service.FactorAt(r.Context(), symbol, date)
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		resp.Date = api.FormatDate(date)
		resp.Rows = []api.FactorRowResponse{api.NewFactorRow(p)}
	}
	render.JSON(w, r, resp)
}

// GetCalendar handles GET /api/v1/calendar
func (h *QueryHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	req := api.CalendarRequest{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, apierrors.InvalidParameter("from/to", err))
		return
	}
	from, ok := h.date(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.date(w, r, "to")
	if !ok {
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		h.fail(w, r, apierrors.InvalidParameter("to", errors.New("to is before from")))
		return
	}

	days, err := h.service.TradingDays(r.Context(), from, to)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	resp := api.CalendarResponse{Count: len(days), Days: make([]string, len(days))}
	for i, d := range days {
		resp.Days[i] = api.FormatDate(d)
	}
	if len(days) > 0 {
		resp.From = resp.Days[0]
		resp.To = resp.Days[len(days)-1]
	}
	render.JSON(w, r, resp)
}

// GetLatestRun handles GET /api/v1/runs/latest
func (h *QueryHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.LatestRun(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

func (h *QueryHandler) symbol(w http.ResponseWriter, r *http.Request) (string, bool) {
	req := api.SymbolRequest{Symbol: strings.ToUpper(chi.URLParam(r, "symbol"))}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, apierrors.InvalidParameter("symbol", err))
		return "", false
	}
	return req.Symbol, true
}

// date validates and parses the optional YYYYMMDD query parameter name
func (h *QueryHandler) date(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	req := api.DateRequest{Date: r.URL.Query().Get(name)}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, apierrors.InvalidParameter(name, err))
		return time.Time{}, false
	}
	d, err := api.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, apierrors.InvalidParameter(name, err))
		return time.Time{}, false
	}
	return d, true
}

func (h *QueryHandler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError
	switch {
	case errors.Is(err, services.ErrNoCalendar):
		apiErr = apierrors.NotFoundError("trading calendar")
	case errors.Is(err, services.ErrNoRun):
		apiErr = apierrors.NotFoundError("run manifest")
	default:
		apiErr = apierrors.FromAppError(err)
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "query failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	h.fail(w, r, apiErr)
}

func (h *QueryHandler) fail(w http.ResponseWriter, r *http.Request, err *apierrors.APIError) {
	if rerr := render.Render(w, r, apierrors.NewErrorResponse(err)); rerr != nil {
		apierrors.WriteError(w, err)
	}
}
