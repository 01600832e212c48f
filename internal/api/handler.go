package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/taxcalc/internal/breakeven"
	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/catalog"
	"github.com/rgehrsitz/taxcalc/internal/compare"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/entitlement"
)

// Handler serves the tax API over one catalog and allow-list
type Handler struct {
	catalog *catalog.Catalog
	filter  entitlement.Filter
	engine  *calculation.Engine
	compare *compare.CompareEngine
	solver  *breakeven.Solver
}

// NewHandler wires the engine, comparison and solver to the catalog. A nil filter
// allows every jurisdiction.
func NewHandler(c *catalog.Catalog, filter entitlement.Filter) *Handler {
	if filter == nil {
		filter = entitlement.Unrestricted
	}
	engine := calculation.NewEngine(c)
	engine.SetLogger(calculation.SlogLogger{})
	return &Handler{
		catalog: c,
		filter:  filter,
		engine:  engine,
		compare: compare.NewCompareEngine(engine),
		solver:  breakeven.NewDefaultSolver(engine),
	}
}

// Health reports liveness and the number of loaded jurisdictions
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "jurisdictions": h.catalog.Len()})
}

// ListJurisdictions returns the jurisdictions the caller may use
func (h *Handler) ListJurisdictions(c *gin.Context) {
	systems := h.catalog.ListAvailable(h.filter.AllowedCountries())
	out := make([]JurisdictionSummary, 0, len(systems))
	for _, s := range systems {
		out = append(out, summarize(s))
	}
	c.JSON(http.StatusOK, gin.H{"jurisdictions": out})
}

// GetJurisdiction returns the full bracket and region tables of one jurisdiction
func (h *Handler) GetJurisdiction(c *gin.Context) {
	code := catalog.NormalizeCode(c.Param("code"))
	if !h.allowed(c, code) {
		return
	}
	system, err := h.catalog.Lookup(code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, system)
}

// Calculate computes one tax result
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.allowed(c, req.Country) {
		return
	}

	system, err := h.catalog.Lookup(req.Country)
	if err != nil {
		h.fail(c, err)
		return
	}
	status, _ := domain.ParseFilingStatus(req.FilingStatus)
	input := domain.TaxCalculationInput{
		GrossIncome:  req.GrossIncome,
		FilingStatus: status,
		Deductions:   calculation.ResolveDeductions(system, status, req.Deductions),
		CountryCode:  system.CountryCode,
		RegionCode:   req.Region,
	}
	res, err := h.engine.Compute(input)
	if err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("calculation served", "country", res.CountryCode, "region", res.RegionCode, "total_tax", res.TotalTax.String())
	c.JSON(http.StatusOK, newCalculateResponse(system, input, res))
}

// Compare runs one income through several jurisdictions
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	base, err := compare.ParseTarget(req.Base)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alternatives := make([]compare.Target, 0, len(req.Alternatives))
	for _, a := range req.Alternatives {
		t, err := compare.ParseTarget(a)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		alternatives = append(alternatives, t)
	}
	status, _ := domain.ParseFilingStatus(req.FilingStatus)

	compSet, err := h.compare.Compare(c.Request.Context(), compare.CompareOptions{
		Base:         base,
		Alternatives: alternatives,
		GrossIncome:  req.GrossIncome,
		FilingStatus: status,
		Deductions:   req.Deductions,
		Filter:       h.filter,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, compSet)
}

// GrossUp finds the gross income that reaches a net income or tax target
func (h *Handler) GrossUp(c *gin.Context) {
	var req GrossUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.allowed(c, req.Country) {
		return
	}
	target, err := breakeven.ParseSolveTarget(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, _ := domain.ParseFilingStatus(req.FilingStatus)

	result, err := h.solver.Solve(c.Request.Context(), breakeven.Request{
		CountryCode:  catalog.NormalizeCode(req.Country),
		RegionCode:   req.Region,
		FilingStatus: status,
		Deductions:   req.Deductions,
		Target:       target,
		TargetAmount: req.Amount,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) allowed(c *gin.Context, country string) bool {
	if err := entitlement.Check(h.filter, country); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// fail maps domain errors to status codes
func (h *Handler) fail(c *gin.Context, err error) {
	var notEntitled *entitlement.NotEntitledError
	var solveErr *breakeven.SolveError
	switch {
	case errors.Is(err, domain.ErrUnknownJurisdiction):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &notEntitled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &solveErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
