package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"procoon/internal/config"
	"procoon/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleNewGame)

		r.Route("/games/{slot}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Post("/tick", s.handleTick)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)

			r.Get("/land/prices", s.handleLandPrices)
			r.Get("/land/prices/{city}", s.handleLandPrice)
			r.Get("/land/roi/{city}", s.handleLandROI)
			r.Post("/land/buy", s.handleBuyLand)
			r.Post("/land/sell", s.handleSellLand)
			r.Delete("/land/sell/{order_id}", s.handleCancelLandSale)

			r.Post("/build/plan", s.handleBuildPlan)
			r.Get("/build", s.handleConstructionQueue)
			r.Post("/build", s.handleStartProject)
			r.Delete("/build/{project_id}", s.handleCancelProject)

			r.Get("/assets", s.handleAssets)
			r.Post("/assets/{asset_id}/rent/simulate", s.handleSimulateRent)
			r.Post("/assets/{asset_id}/rent", s.handleSetRent)
			r.Delete("/assets/{asset_id}/rent", s.handleStopRent)
			r.Get("/assets/{asset_id}/roi", s.handleAssetROI)
			r.Post("/assets/{asset_id}/sell/simulate", s.handleSimulateSale)
			r.Post("/assets/{asset_id}/sell", s.handleSellProperty)
			r.Delete("/assets/{asset_id}/sell", s.handleCancelPropertySale)

			r.Get("/loans", s.handleLoans)
			r.Post("/loans", s.handleTakeLoan)
			r.Post("/loans/{loan_id}/pay", s.handlePayLoan)
			r.Post("/loans/{loan_id}/autopay", s.handleLoanAutoPay)
			r.Get("/loans/credit-limit", s.handleCreditLimit)

			r.Get("/report", s.handleReport)
		})
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Slot        string `json:"slot"`
		CompanyName string `json:"company_name"`
		CEOName     string `json:"ceo_name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Slot == "" {
		in.Slot = s.cfg.DefaultSlot
	}
	save, err := s.game.NewGame(r.Context(), in.Slot, in.CompanyName, in.CEOName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, save)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	save, err := s.game.State(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, save)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ElapsedMS int64 `json:"elapsed_ms"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.game.AdvanceTime(r.Context(), chi.URLParam(r, "slot"), time.Duration(in.ElapsedMS)*time.Millisecond)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handleSetPaused(w, r, true)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.handleSetPaused(w, r, false)
}

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	save, err := s.game.SetPaused(r.Context(), chi.URLParam(r, "slot"), paused)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paused": save.Paused, "game_time": save.GameTime})
}

func (s *Server) handleLandPrices(w http.ResponseWriter, r *http.Request) {
	views, err := s.game.LandPrices(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prices": views})
}

func (s *Server) handleLandPrice(w http.ResponseWriter, r *http.Request) {
	quote, err := s.game.LandPriceFor(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "city"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleLandROI(w http.ResponseWriter, r *http.Request) {
	ha, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("ha")), 64)
	if err != nil || ha <= 0 {
		writeError(w, http.StatusBadRequest, "ha query parameter must be a positive number")
		return
	}
	years := 5
	if v := strings.TrimSpace(r.URL.Query().Get("years")); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			years = n
		}
	}
	view, err := s.game.LandROIFor(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "city"), ha, years)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBuyLand(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CityID string  `json:"city_id"`
		Ha     float64 `json:"ha"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := s.game.BuyLand(r.Context(), chi.URLParam(r, "slot"), in.CityID, in.Ha)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleSellLand(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CityID     string `json:"city_id"`
		M2         int64  `json:"m2"`
		PricePerM2 int64  `json:"price_per_m2"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := s.game.SellLand(r.Context(), chi.URLParam(r, "slot"), in.CityID, in.M2, in.PricePerM2)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancelLandSale(w http.ResponseWriter, r *http.Request) {
	err := s.game.CancelLandSale(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "order_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

type buildInput struct {
	PropertyType string `json:"property_type"`
	Variant      string `json:"variant"`
	Units        int    `json:"units"`
	Towers       int    `json:"towers"`
	Floors       int    `json:"floors"`
	LocationID   string `json:"location_id"`
}

func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var in buildInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := game.PlanBuild(in.PropertyType, in.Variant, in.Units, in.Towers, in.Floors)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleStartProject(w http.ResponseWriter, r *http.Request) {
	var in buildInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	project, err := s.game.StartProject(r.Context(), chi.URLParam(r, "slot"),
		in.PropertyType, in.Variant, in.Units, in.Towers, in.Floors, in.LocationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleCancelProject(w http.ResponseWriter, r *http.Request) {
	refund, err := s.game.CancelProject(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "project_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"refund": refund})
}

func (s *Server) handleConstructionQueue(w http.ResponseWriter, r *http.Request) {
	save, err := s.game.State(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": save.ConstructionQueue})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	save, err := s.game.State(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": save.Assets})
}

func (s *Server) handleSimulateRent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Price int64 `json:"price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := s.game.SimulateRentFor(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"), in.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleSetRent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Price int64 `json:"price"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := s.game.SetRent(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"), in.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleStopRent(w http.ResponseWriter, r *http.Request) {
	err := s.game.StopRent(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stopped": true})
}

func (s *Server) handleAssetROI(w http.ResponseWriter, r *http.Request) {
	months := 12
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			months = n
		}
	}
	roi, err := s.game.AssetROI(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"), months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roi)
}

func (s *Server) handleSimulateSale(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PricePerUnit int64 `json:"price_per_unit"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sim, err := s.game.SimulateSaleFor(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"), in.PricePerUnit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleSellProperty(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PricePerUnit int64 `json:"price_per_unit"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := s.game.SellProperty(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"), in.PricePerUnit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) handleCancelPropertySale(w http.ResponseWriter, r *http.Request) {
	err := s.game.CancelPropertySale(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "asset_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Principal  int64 `json:"principal"`
		TenorYears int   `json:"tenor_years"`
		AutoPay    bool  `json:"auto_pay"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := s.game.TakeLoan(r.Context(), chi.URLParam(r, "slot"), in.Principal, in.TenorYears, in.AutoPay)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (s *Server) handlePayLoan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Months int `json:"months"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := s.game.PayLoan(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "loan_id"), in.Months)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	save, err := s.game.State(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": save.Finance.Loans})
}

func (s *Server) handleLoanAutoPay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := s.game.SetLoanAutoPay(r.Context(), chi.URLParam(r, "slot"), chi.URLParam(r, "loan_id"), in.Enabled)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) handleCreditLimit(w http.ResponseWriter, r *http.Request) {
	limit, err := s.game.CreditLimit(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credit_limit": limit})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.game.Report(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrSaveNotFound), errors.Is(err, game.ErrNotFound), errors.Is(err, game.ErrUnknownCity):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInsufficientCash), errors.Is(err, game.ErrInsufficientLand),
		errors.Is(err, game.ErrCreditLimit), errors.Is(err, game.ErrNoIncome):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrBelowMinimum), errors.Is(err, game.ErrUnrealisticPrice),
		errors.Is(err, game.ErrNotRentable), errors.Is(err, game.ErrLoanClosed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrAlreadyListed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrSaveCorrupt), errors.Is(err, game.ErrConfigMissing), errors.Is(err, game.ErrClockNotReady):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
