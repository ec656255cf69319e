package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/service"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/metrics"
)

// RoundHandler exposes the daily medication round: the reconciled sheet
// and the three dose transitions. Every transition responds with the
// re-reconciled sheet for the dose's date so clients never patch local
// state.
type RoundHandler struct {
	roundSvc  *service.RoundService
	collector *metrics.Collector
}

func NewRoundHandler(roundSvc *service.RoundService, collector *metrics.Collector) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc, collector: collector}
}

func (h *RoundHandler) Sheet(c *gin.Context) {
	day, ok := parseQueryDate(c, "date", time.Now())
	if !ok {
		return
	}

	sheet, err := h.roundSvc.DaySheet(c.Request.Context(), day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sheet)
}

type doseKeyRequest struct {
	ScheduleID uuid.UUID `json:"schedule_id" binding:"required"`
	Date       string    `json:"date" binding:"required"`
	Time       string    `json:"time" binding:"required"`
}

func (r doseKeyRequest) key() medication.DoseKey {
	return medication.DoseKey{ScheduleID: r.ScheduleID, Date: r.Date, Time: r.Time}
}

type markDoneRequest struct {
	doseKeyRequest
	ResidentID uuid.UUID `json:"resident_id" binding:"required"`
	Notes      string    `json:"notes"`
}

func (h *RoundHandler) MarkDone(c *gin.Context) {
	claims := currentClaims(c)
	var req markDoneRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.roundSvc.MarkDone(c.Request.Context(), &medication.MarkDoneCommand{
		Key:        req.key(),
		ResidentID: req.ResidentID,
		ActorID:    claims.UserID,
		Notes:      req.Notes,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DoseTransitionsTotal.WithLabelValues("done").Inc()
	respondOK(c, sheet)
}

type markNotDoneRequest struct {
	doseKeyRequest
	ResidentID uuid.UUID `json:"resident_id" binding:"required"`
	Reason     string    `json:"reason"`
	Notes      string    `json:"notes"`
}

func (h *RoundHandler) MarkNotDone(c *gin.Context) {
	claims := currentClaims(c)
	var req markNotDoneRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.roundSvc.MarkNotDone(c.Request.Context(), &medication.MarkNotDoneCommand{
		Key:        req.key(),
		ResidentID: req.ResidentID,
		ActorID:    claims.UserID,
		Reason:     req.Reason,
		Notes:      req.Notes,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DoseTransitionsTotal.WithLabelValues("not_done").Inc()
	respondOK(c, sheet)
}

func (h *RoundHandler) Undo(c *gin.Context) {
	claims := currentClaims(c)
	var req doseKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	sheet, err := h.roundSvc.Undo(c.Request.Context(), &medication.UndoCommand{
		Key:     req.key(),
		ActorID: claims.UserID,
	}, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.DoseTransitionsTotal.WithLabelValues("undo").Inc()
	respondOK(c, sheet)
}
