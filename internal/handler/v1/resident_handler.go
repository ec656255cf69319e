package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/service"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/metrics"
)

type ResidentHandler struct {
	residentSvc *service.ResidentService
	collector   *metrics.Collector
}

func NewResidentHandler(residentSvc *service.ResidentService, collector *metrics.Collector) *ResidentHandler {
	return &ResidentHandler{residentSvc: residentSvc, collector: collector}
}

type createResidentRequest struct {
	FirstName         string             `json:"first_name" binding:"required"`
	LastName          string             `json:"last_name" binding:"required"`
	DateOfBirth       time.Time          `json:"date_of_birth" binding:"required"`
	NationalID        string             `json:"national_id" binding:"required"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email"`
	Address           string             `json:"address"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	ZipCode           string             `json:"zip_code"`
	Guardian          *resident.Guardian `json:"guardian"`
	Allergies         []string           `json:"allergies"`
	ChronicConditions []string           `json:"chronic_conditions"`
	AdmittedAt        time.Time          `json:"admitted_at"`
	RoomNumber        string             `json:"room_number"`
	Notes             string             `json:"notes"`
}

func (h *ResidentHandler) Create(c *gin.Context) {
	claims := currentClaims(c)
	var req createResidentRequest
	if !bindJSON(c, &req) {
		return
	}

	admittedAt := req.AdmittedAt
	if admittedAt.IsZero() {
		admittedAt = time.Now()
	}

	r, err := h.residentSvc.CreateResident(c.Request.Context(), &resident.CreateResidentCommand{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		DateOfBirth:       req.DateOfBirth,
		NationalID:        req.NationalID,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		ZipCode:           req.ZipCode,
		Guardian:          req.Guardian,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
		AdmittedAt:        admittedAt,
		RoomNumber:        req.RoomNumber,
		Notes:             req.Notes,
		CreatedBy:         claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.ResidentsCreatedTotal.Inc()
	respondCreated(c, r)
}

func (h *ResidentHandler) Get(c *gin.Context) {
	claims := currentClaims(c)
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.residentSvc.GetResident(c.Request.Context(), id, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

type updateResidentRequest struct {
	FirstName  *string            `json:"first_name"`
	LastName   *string            `json:"last_name"`
	Phone      *string            `json:"phone"`
	Email      *string            `json:"email"`
	Address    *string            `json:"address"`
	City       *string            `json:"city"`
	State      *string            `json:"state"`
	ZipCode    *string            `json:"zip_code"`
	Guardian   *resident.Guardian `json:"guardian"`
	Allergies  *[]string          `json:"allergies"`
	RoomNumber *string            `json:"room_number"`
	Notes      *string            `json:"notes"`
}

func (h *ResidentHandler) Update(c *gin.Context) {
	claims := currentClaims(c)
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateResidentRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.residentSvc.UpdateResident(c.Request.Context(), id, &resident.UpdateResidentCommand{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Guardian:   req.Guardian,
		Allergies:  req.Allergies,
		RoomNumber: req.RoomNumber,
		Notes:      req.Notes,
		UpdatedBy:  claims.UserID,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

func (h *ResidentHandler) Deactivate(c *gin.Context) {
	claims := currentClaims(c)
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	err := h.residentSvc.DeactivateResident(c.Request.Context(), id, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResidentHandler) List(c *gin.Context) {
	q := &resident.ListResidentsQuery{
		Search:    c.Query("search"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := resident.Status(raw)
		if !status.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Status = &status
	}

	page, err := h.residentSvc.ListResidents(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
