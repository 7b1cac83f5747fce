/*
handlers.go - HTTP handlers for the simulation API

PURPOSE:
  Implements the request/response logic for every endpoint. Handlers
  follow a consistent pattern:
  1. Parse and validate the request
  2. Build the model configuration
  3. Run the simulation
  4. Record the run (when a store is configured)
  5. Serialize the response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Parameter errors (type, range), negative horizons, bad JSON
  - 404: Unknown scenario or run
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/debt-engine/conventional"
	"github.com/warp/debt-engine/mudarabah"
	"github.com/warp/debt-engine/scenario"
	"github.com/warp/debt-engine/simulation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Runs   simulation.RunStore
	Logger *log.Logger

	scenarios []scenario.Definition
}

// NewHandler creates a handler backed by the given run store. Extra
// scenario definitions are merged with the built-ins.
func NewHandler(runs simulation.RunStore, extra ...scenario.Definition) *Handler {
	return &Handler{
		Runs:      runs,
		Logger:    log.Default(),
		scenarios: append(scenario.Builtins(), extra...),
	}
}

func (h *Handler) observer(verbose bool) simulation.PeriodObserver {
	if verbose {
		return simulation.NewLogObserver(h.Logger)
	}
	return simulation.NopObserver{}
}

// =============================================================================
// SIMULATION ENDPOINTS
// =============================================================================

// SimulateConventional handles POST /api/simulations/conventional.
func (h *Handler) SimulateConventional(w http.ResponseWriter, r *http.Request) {
	var req ConventionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := h.conventionalConfig(req)
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}
	model, err := conventional.New(cfg)
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}

	h.run(w, r, conventional.ModelName, req.SimulationRequest, model)
}

// SimulateMudarabah handles POST /api/simulations/mudarabah.
func (h *Handler) SimulateMudarabah(w http.ResponseWriter, r *http.Request) {
	var req MudarabahRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := h.mudarabahConfig(req)
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}
	model, err := mudarabah.New(cfg)
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}

	h.run(w, r, mudarabah.ModelName, req.SimulationRequest, model)
}

// simulator is what both model packages expose to the API layer.
type simulator interface {
	Simulate(timePeriod, gracePeriod int) (simulation.Result, error)
	Values() *simulation.Series
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, modelName string, req SimulationRequest, model simulator) {
	res, err := model.Simulate(req.TimePeriod, req.GracePeriod)
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}

	resp := SimulationResponse{
		Model:  modelName,
		Result: resultDTO(res),
		Series: recordDTOs(model.Values().Records()),
	}

	if h.Runs != nil {
		run := simulation.Run{
			ID:        newRunID(),
			Model:     modelName,
			Result:    res,
			Series:    model.Values().Records(),
			CreatedAt: time.Now().UTC(),
		}
		if err := h.Runs.SaveRun(r.Context(), run); err != nil {
			h.Logger.Printf("save run: %v", err)
		} else {
			resp.RunID = run.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) conventionalConfig(req ConventionalRequest) (conventional.Config, error) {
	params, err := requestParams(req.SimulationRequest)
	if err != nil {
		return conventional.Config{}, err
	}
	return conventional.Config{
		InitialCapital:  dec(req.InitialCapital),
		CurrentCapital:  dec(req.CurrentCapital),
		ProfitMargin:    params.ProfitMargin,
		Expenses:        params.Expenses,
		Reinvestment:    params.Reinvestment,
		Dividend:        params.Dividend,
		InterestRate:    dec(req.InterestRate),
		LoanPeriodYears: req.LoanPeriodYears,
		Observer:        h.observer(req.Verbose),
	}, nil
}

func (h *Handler) mudarabahConfig(req MudarabahRequest) (mudarabah.Config, error) {
	params, err := requestParams(req.SimulationRequest)
	if err != nil {
		return mudarabah.Config{}, err
	}
	return mudarabah.Config{
		InitialCapital: dec(req.InitialCapital),
		CurrentCapital: dec(req.CurrentCapital),
		ProfitMargin:   params.ProfitMargin,
		Expenses:       params.Expenses,
		Reinvestment:   params.Reinvestment,
		Dividend:       params.Dividend,
		BankFee:        dec(req.BankFee),
		BankShare:      dec(req.BankShare),
		Observer:       h.observer(req.Verbose),
	}, nil
}

func requestParams(req SimulationRequest) (simulation.ParamSet, error) {
	var (
		set simulation.ParamSet
		err error
	)
	if set.ProfitMargin, err = req.ProfitMargin.Param(simulation.ParamProfitMargin); err != nil {
		return simulation.ParamSet{}, err
	}
	if set.Expenses, err = req.Expenses.Param(simulation.ParamExpenses); err != nil {
		return simulation.ParamSet{}, err
	}
	if set.Reinvestment, err = req.Reinvestment.Param(simulation.ParamReinvestment); err != nil {
		return simulation.ParamSet{}, err
	}
	if req.Dividend.IsSet() {
		if set.Dividend, err = req.Dividend.Param(simulation.ParamDividend); err != nil {
			return simulation.ParamSet{}, err
		}
	}
	// An unset dividend stays the zero Param; models default it to 0.
	return set, nil
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios handles GET /api/scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(h.scenarios))
	for i, d := range h.scenarios {
		out[i] = ScenarioDTO{ID: d.ID, Name: d.Name, Description: d.Description, Model: d.Model}
	}
	writeJSON(w, http.StatusOK, out)
}

// RunScenario handles POST /api/scenarios/{id}/run.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := scenario.Find(h.scenarios, id)
	if !ok {
		writeError(w, http.StatusNotFound, errUnknownScenario(id))
		return
	}

	var (
		model simulator
		err   error
	)
	switch def.Model {
	case conventional.ModelName:
		var cfg conventional.Config
		if cfg, err = def.ConventionalConfig(); err == nil {
			model, err = conventional.New(cfg)
		}
	case mudarabah.ModelName:
		var cfg mudarabah.Config
		if cfg, err = def.MudarabahConfig(); err == nil {
			model, err = mudarabah.New(cfg)
		}
	}
	if err != nil {
		h.writeSimulationError(w, err)
		return
	}

	h.run(w, r, def.Model, SimulationRequest{TimePeriod: def.TimePeriod, GracePeriod: def.GracePeriod}, model)
}

// =============================================================================
// RUN ENDPOINTS
// =============================================================================

// ListRuns handles GET /api/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, []RunSummaryDTO{})
		return
	}
	runs, err := h.Runs.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]RunSummaryDTO, len(runs))
	for i, run := range runs {
		out[i] = RunSummaryDTO{
			ID:        run.ID,
			Model:     run.Model,
			Result:    resultDTO(run.Result),
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRun handles GET /api/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeError(w, http.StatusNotFound, simulation.ErrRunNotFound)
		return
	}
	run, err := h.Runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if simulation.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, SimulationResponse{
		RunID:  run.ID,
		Model:  run.Model,
		Result: resultDTO(run.Result),
		Series: recordDTOs(run.Series),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeSimulationError(w http.ResponseWriter, err error) {
	if simulation.IsInputError(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

type errUnknownScenario string

func (e errUnknownScenario) Error() string { return "unknown scenario: " + string(e) }

func newRunID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "run-" + hex.EncodeToString(b)
}
