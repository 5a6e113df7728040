package handler

import (
	"errors"
	"net/http"

	"github.com/EdinMesanovic/postinfo/internal/apierror"
	"github.com/EdinMesanovic/postinfo/internal/dto"
	"github.com/EdinMesanovic/postinfo/internal/middleware"
	"github.com/EdinMesanovic/postinfo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShipmentsHandler struct{ svc service.ShipmentService }

func NewShipmentsHandler(svc service.ShipmentService) *ShipmentsHandler {
	return &ShipmentsHandler{svc: svc}
}

func (h *ShipmentsHandler) Create(c *gin.Context) {
	var req dto.CreateShipmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ShipmentsHandler) List(c *gin.Context) {
	var q dto.ListShipmentsQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShipmentsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("VALIDATION"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("not_found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Label serves the printable A4 QR label PDF.
func (h *ShipmentsHandler) Label(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("VALIDATION"))
		return
	}
	path, err := h.svc.LabelPath(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("not_found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

// ScanPickup godoc
// @Summary Driver scans a shipment QR to confirm pickup
// @Tags shipments
// @Accept json
// @Produce json
// @Param body body dto.ScanPickupRequest true "QR payload"
// @Success 200 {object} dto.ScanPickupResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/shipments/scan/pickup [post]
func (h *ShipmentsHandler) ScanPickup(c *gin.Context) {
	var req dto.ScanPickupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	claims := middleware.GetClaims(c)
	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("UNAUTHENTICATED"))
		return
	}

	result, err := h.svc.ScanPickup(c.Request.Context(), req.QRSlug, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			middleware.ScansTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, apierror.New("qr_not_found"))
		case errors.Is(err, service.ErrConflict):
			middleware.ScansTotal.WithLabelValues("conflict").Inc()
			c.JSON(http.StatusConflict, apierror.New("pickup_conflict"))
		default:
			c.Error(err) //nolint:errcheck
		}
		return
	}

	outcome := "picked"
	if result.AlreadyPicked {
		outcome = "already_picked"
	}
	middleware.ScansTotal.WithLabelValues(outcome).Inc()

	shipment := result.Shipment
	resp := dto.ScanPickupResponse{
		OK:            true,
		Picked:        result.Picked,
		AlreadyPicked: result.AlreadyPicked,
		ShipmentID:    shipment.ID.String(),
		Status:        shipment.Status,
		PickedAt:      shipment.PickedAt,
	}
	if shipment.PickedBy != nil {
		picked := shipment.PickedBy.String()
		resp.PickedBy = &picked
	}
	c.JSON(http.StatusOK, resp)
}
