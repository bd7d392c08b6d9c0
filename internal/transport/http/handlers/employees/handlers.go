package employeeshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"empdir/internal/domain/employee"
	"empdir/internal/transport/http/api"
	"empdir/internal/transport/http/middleware"
	"empdir/internal/transport/http/shared"
)

const (
	msgInternal      = "Internal server error"
	msgNotFound      = "Employee not found"
	msgInvalidBody   = "Invalid request body"
	msgDuplicateName = "Employee name already exists"
	msgMissingField  = "Missing required field"
	msgDeletedAll    = "All employees deleted successfully"
	msgDeletedOne    = "Employee deleted successfully"
	totalCountHeader = "X-Total-Count"
)

// Directory is the storage surface the handlers need. *employee.Store
// satisfies it.
type Directory interface {
	List(ctx context.Context, page, pageSize int) ([]employee.Aggregate, error)
	Count(ctx context.Context) (int, error)
	GetByName(ctx context.Context, name string) (*employee.Aggregate, error)
	Create(ctx context.Context, emp employee.Employee, contacts []employee.EmergencyContact, secondary []employee.SecondaryEmergencyContact) (*employee.Employee, error)
	ReplaceByName(ctx context.Context, name string, fields employee.Fields, contacts []employee.EmergencyContact, secondary []employee.SecondaryEmergencyContact) (bool, error)
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type Handler struct {
	Store Directory
}

func NewHandler(store Directory) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/", h.handleDeleteAll)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleReplace)
			r.Patch("/", h.handleReplace)
			r.Delete("/", h.handleDelete)
			r.Get("/card.pdf", h.handleCard)
		})
	})
}

// replaceRequest is both the PUT/PATCH body and the echoed response.
type replaceRequest struct {
	Name string `json:"name"`
	employee.Fields
	EmergencyContacts          []employee.EmergencyContact          `json:"emergency_contacts"`
	SecondaryEmergencyContacts []employee.SecondaryEmergencyContact `json:"secondary_emergency_contacts"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	p := shared.ParsePagination(r)

	items, err := h.Store.List(r.Context(), p.Page, p.PageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	total, err := h.Store.Count(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set(totalCountHeader, strconv.Itoa(total))
	api.Success(w, items)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Aggregate
	if !decode(w, r, &payload) {
		return
	}

	created, err := h.Store.Create(r.Context(), payload.Employee, payload.EmergencyContacts, payload.SecondaryEmergencyContacts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Created(w, created)
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Store.DeleteAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Int64("deleted", deleted).Msg("employees deleted")
	api.Info(w, msgDeletedAll, "")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	agg, err := h.Store.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, agg)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	var payload replaceRequest
	if !decode(w, r, &payload) {
		return
	}
	payload.Name = chi.URLParam(r, "name")
	if payload.EmergencyContacts == nil {
		payload.EmergencyContacts = []employee.EmergencyContact{}
	}
	if payload.SecondaryEmergencyContacts == nil {
		payload.SecondaryEmergencyContacts = []employee.SecondaryEmergencyContact{}
	}

	matched, err := h.Store.ReplaceByName(r.Context(), payload.Name, payload.Fields, payload.EmergencyContacts, payload.SecondaryEmergencyContacts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !matched {
		zerolog.Ctx(r.Context()).Debug().Str("name", payload.Name).Msg("replace matched no employee")
	}
	api.Success(w, payload)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteByName(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Info(w, msgDeletedOne, "")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "Request body too large", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, msgInvalidBody, middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, msgNotFound, reqID)
	case errors.Is(err, employee.ErrDuplicateName):
		api.Fail(w, http.StatusConflict, msgDuplicateName, reqID)
	case errors.Is(err, employee.ErrMissingField):
		api.Fail(w, http.StatusBadRequest, msgMissingField, reqID)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("employee request failed")
		api.Fail(w, http.StatusInternalServerError, msgInternal, reqID)
	}
}
