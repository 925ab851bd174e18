package students

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/rbac"
)

// Handler manages student-record endpoints.
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

// MountRoutes registers student routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermStudentView))
		r.Get("/", h.listStudents)
		r.Get("/{id}", h.getStudent)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.Require(rbac.PermStudentManage))
		r.Post("/", h.createStudent)
		r.Put("/{id}", h.updateStudent)
		r.Delete("/{id}", h.deleteStudent)
	})
}

type studentResponse struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	FullName    string `json:"full_name"`
	ProgramID   int64  `json:"program_id"`
	GuardianTel string `json:"guardian_tel,omitempty"`
}

type createStudentRequest struct {
	Number      string `json:"number" validate:"required,min=3,max=32"`
	FullName    string `json:"full_name" validate:"required,min=2,max=128"`
	ProgramID   int64  `json:"program_id" validate:"required,gt=0"`
	GuardianTel string `json:"guardian_tel" validate:"omitempty,max=32"`
}

type updateStudentRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=128"`
	ProgramID   int64  `json:"program_id" validate:"required,gt=0"`
	GuardianTel string `json:"guardian_tel" validate:"omitempty,max=32"`
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	var programID int64
	if raw := r.URL.Query().Get("program_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid program_id")
			return
		}
		programID = id
	}
	students, err := h.service.ListStudents(r.Context(), programID)
	if err != nil {
		h.fail(w, "list students", err)
		return
	}
	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": out})
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	s, err := h.service.GetStudent(r.Context(), id)
	if err != nil {
		h.fail(w, "get student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(s))
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.service.CreateStudent(r.Context(), req.Number, req.FullName, req.ProgramID, req.GuardianTel)
	if err != nil {
		h.fail(w, "create student", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toStudentResponse(s))
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateStudentRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.service.UpdateStudent(r.Context(), id, req.FullName, req.ProgramID, req.GuardianTel)
	if err != nil {
		h.fail(w, "update student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(s))
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.fail(w, "delete student", err)
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

func toStudentResponse(s Student) studentResponse {
	return studentResponse{ID: s.ID, Number: s.Number, FullName: s.FullName, ProgramID: s.ProgramID, GuardianTel: s.GuardianTel}
}
