// Package booking exposes the wizard over HTTP. Handlers stay thin: parse,
// dispatch into the service, map errors onto the response envelope.
package booking

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vet-tarapaca/booking-api/internal/model"
	bookingService "github.com/vet-tarapaca/booking-api/internal/service/booking"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
	"github.com/vet-tarapaca/booking-api/pkg/httputil"
)

type Handler struct {
	service *bookingService.Service
}

func NewHandler(service *bookingService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/consultation-types", h.ListConsultationTypes)

	sessions := r.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.POST("/:id/contact", h.SubmitContact)
	sessions.POST("/:id/service", h.SelectService)
	sessions.GET("/:id/availability", h.Availability)
	sessions.POST("/:id/slot", h.SelectSlot)
	sessions.POST("/:id/back", h.Back)
	sessions.POST("/:id/submit", h.Submit)
}

func (h *Handler) ListConsultationTypes(c *gin.Context) {
	types := make([]model.ConsultationType, 0, len(h.service.Catalog()))
	for _, t := range h.service.Catalog() {
		types = append(types, t)
	}
	httputil.RespondWithSuccess(c, http.StatusOK, types)
}

func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, sess)
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	sess, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) SubmitContact(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req model.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation("body"))
		return
	}
	sess, err := h.service.SubmitContact(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) SelectService(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req model.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, bindingError(err, "type"))
		return
	}
	sess, err := h.service.SelectService(c.Request.Context(), id, req.Type)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) Availability(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("date"))
		return
	}
	res, err := h.service.Availability(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, res)
}

func (h *Handler) SelectSlot(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req model.SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, bindingError(err, "date", "time"))
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("date"))
		return
	}
	slot, err := model.ParseTimeSlot(req.Time)
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("time"))
		return
	}
	sess, err := h.service.SelectSlot(c.Request.Context(), id, date, slot)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) Back(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	sess, err := h.service.Back(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, sess)
}

func (h *Handler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	rec, err := h.service.Submit(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, rec)
}

// bindingError maps a bind failure onto a validation error naming the
// offending json fields, falling back to the whole field set for malformed
// bodies.
func bindingError(err error, fallback ...string) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, e.Field())
		}
		return errors.NewValidation(fields...)
	}
	return errors.NewValidation(fallback...)
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("session_id"))
		return uuid.Nil, false
	}
	return id, true
}
