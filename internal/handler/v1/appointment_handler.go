package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/service"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/metrics"
)

type AppointmentHandler struct {
	appointmentSvc *service.AppointmentService
	collector      *metrics.Collector
}

func NewAppointmentHandler(appointmentSvc *service.AppointmentService, collector *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc, collector: collector}
}

type createAppointmentRequest struct {
	ResidentID    uuid.UUID  `json:"resident_id" binding:"required"`
	Specialty     string     `json:"specialty" binding:"required"`
	Provider      string     `json:"provider"`
	Location      string     `json:"location"`
	ScheduledDate time.Time  `json:"scheduled_date" binding:"required"`
	ScheduledTime string     `json:"scheduled_time"`
	ReturnDate    *time.Time `json:"return_date"`
	Notes         string     `json:"notes"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := currentClaims(c)
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointmentSvc.CreateAppointment(c.Request.Context(), &appointment.CreateAppointmentCommand{
		ResidentID:    req.ResidentID,
		Specialty:     req.Specialty,
		Provider:      req.Provider,
		Location:      req.Location,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		ReturnDate:    req.ReturnDate,
		Notes:         req.Notes,
		CreatedBy:     claims.UserID,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.appointmentSvc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("resident_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid resident_id")
			return
		}
		q.ResidentID = &id
	}
	if raw := c.Query("specialty"); raw != "" {
		q.Specialty = &raw
	}
	if from, ok := c.GetQuery("from"); ok {
		d, err := time.Parse(time.DateOnly, from)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid from: must be YYYY-MM-DD")
			return
		}
		q.DateFrom = &d
	}
	if to, ok := c.GetQuery("to"); ok {
		d, err := time.Parse(time.DateOnly, to)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid to: must be YYYY-MM-DD")
			return
		}
		q.DateTo = &d
	}

	page, err := h.appointmentSvc.ListAppointments(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

// Tracking returns the visit sheet over [from, to], defaulting to the
// current day.
func (h *AppointmentHandler) Tracking(c *gin.Context) {
	today := time.Now()
	from, ok := parseQueryDate(c, "from", today)
	if !ok {
		return
	}
	to, ok := parseQueryDate(c, "to", from)
	if !ok {
		return
	}
	if to.Before(from) {
		respondError(c, http.StatusBadRequest, "to cannot precede from")
		return
	}

	sheet, err := h.appointmentSvc.Tracking(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sheet)
}

type visitKeyRequest struct {
	AppointmentID uuid.UUID             `json:"appointment_id" binding:"required"`
	Date          string                `json:"date" binding:"required"`
	Kind          appointment.VisitKind `json:"kind" binding:"required"`
}

func (r visitKeyRequest) key() appointment.VisitKey {
	return appointment.VisitKey{AppointmentID: r.AppointmentID, Date: r.Date, Kind: r.Kind}
}

type markAttendanceRequest struct {
	visitKeyRequest
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (h *AppointmentHandler) MarkAttended(c *gin.Context) {
	claims := currentClaims(c)
	var req markAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.appointmentSvc.MarkAttended(c.Request.Context(), &appointment.MarkAttendanceCommand{
		Key:     req.key(),
		ActorID: claims.UserID,
		Notes:   req.Notes,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.VisitOutcomesTotal.WithLabelValues("attended").Inc()
	respondOK(c, sheet)
}

func (h *AppointmentHandler) MarkMissed(c *gin.Context) {
	claims := currentClaims(c)
	var req markAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.appointmentSvc.MarkMissed(c.Request.Context(), &appointment.MarkAttendanceCommand{
		Key:     req.key(),
		ActorID: claims.UserID,
		Reason:  req.Reason,
		Notes:   req.Notes,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.VisitOutcomesTotal.WithLabelValues("missed").Inc()
	respondOK(c, sheet)
}

func (h *AppointmentHandler) UndoAttendance(c *gin.Context) {
	claims := currentClaims(c)
	var req visitKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.appointmentSvc.UndoAttendance(c.Request.Context(), &appointment.MarkAttendanceCommand{
		Key:     req.key(),
		ActorID: claims.UserID,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.VisitOutcomesTotal.WithLabelValues("undo").Inc()
	respondOK(c, sheet)
}
