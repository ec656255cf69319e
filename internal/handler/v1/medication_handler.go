package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/service"
)

type MedicationHandler struct {
	medicationSvc *service.MedicationService
}

func NewMedicationHandler(medicationSvc *service.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationSvc: medicationSvc}
}

type createScheduleRequest struct {
	TimeOfDay    string               `json:"time_of_day" binding:"required"`
	Frequency    medication.Frequency `json:"frequency" binding:"required"`
	Weekdays     []time.Weekday       `json:"weekdays"`
	Instructions string               `json:"instructions"`
	DepartmentID *uuid.UUID           `json:"department_id"`
}

type createMedicationRequest struct {
	ResidentID  uuid.UUID               `json:"resident_id" binding:"required"`
	Name        string                  `json:"name" binding:"required"`
	GenericName string                  `json:"generic_name"`
	Dosage      string                  `json:"dosage"`
	Route       string                  `json:"route"`
	Prescriber  string                  `json:"prescriber"`
	StartDate   *time.Time              `json:"start_date"`
	EndDate     *time.Time              `json:"end_date"`
	Schedules   []createScheduleRequest `json:"schedules" binding:"required"`
}

func (h *MedicationHandler) Create(c *gin.Context) {
	claims := currentClaims(c)
	var req createMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &medication.CreateMedicationCommand{
		ResidentID:  req.ResidentID,
		Name:        req.Name,
		GenericName: req.GenericName,
		Dosage:      req.Dosage,
		Route:       req.Route,
		Prescriber:  req.Prescriber,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   claims.UserID,
	}
	for _, s := range req.Schedules {
		cmd.Schedules = append(cmd.Schedules, medication.CreateScheduleCommand{
			TimeOfDay:    s.TimeOfDay,
			Frequency:    s.Frequency,
			Weekdays:     s.Weekdays,
			Instructions: s.Instructions,
			DepartmentID: s.DepartmentID,
		})
	}

	m, err := h.medicationSvc.CreateMedication(c.Request.Context(), cmd, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, m)
}

func (h *MedicationHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.medicationSvc.GetMedication(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}

func (h *MedicationHandler) List(c *gin.Context) {
	q := &medication.ListMedicationsQuery{
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
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		q.Active = &active
	}

	page, err := h.medicationSvc.ListMedications(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *MedicationHandler) Deactivate(c *gin.Context) {
	claims := currentClaims(c)
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	err := h.medicationSvc.DeactivateMedication(c.Request.Context(), id, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
