package programs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/rbac"
)

// Handler manages study-program endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Gate
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers program routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermProgramView))
		r.Get("/", h.listPrograms)
		r.Get("/{id}", h.getProgram)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermProgramManage))
		r.Post("/", h.createProgram)
		r.Put("/{id}", h.updateProgram)
		r.Delete("/{id}", h.deleteProgram)
	})
}

type programResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type createProgramRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=16"`
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=500"`
}

type updateProgramRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"max=500"`
}

func (h *Handler) listPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.ListPrograms(r.Context())
	if err != nil {
		h.fail(w, "list programs", err)
		return
	}
	out := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, toProgramResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"programs": out})
}

func (h *Handler) getProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProgram(r.Context(), id)
	if err != nil {
		h.fail(w, "get program", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProgramResponse(p))
}

func (h *Handler) createProgram(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.CreateProgram(r.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		h.fail(w, "create program", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProgramResponse(p))
}

func (h *Handler) updateProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateProgramRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdateProgram(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.fail(w, "update program", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProgramResponse(p))
}

func (h *Handler) deleteProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProgram(r.Context(), id); err != nil {
		h.fail(w, "delete program", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toProgramResponse(p Program) programResponse {
	return programResponse{ID: p.ID, Code: p.Code, Name: p.Name, Description: p.Description}
}
