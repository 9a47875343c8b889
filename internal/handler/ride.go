package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carshare/internal/catalog"
	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/repository"
	"carshare/internal/session"
)

// RideHandler handles HTTP requests for ride offerings and ride sessions.
type RideHandler struct {
	sessionService *session.Service
	catalog        *catalog.Catalog
	receiptRepo    repository.ReceiptRepository
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(sessionService *session.Service, cat *catalog.Catalog, receiptRepo repository.ReceiptRepository) *RideHandler {
	return &RideHandler{
		sessionService: sessionService,
		catalog:        cat,
		receiptRepo:    receiptRepo,
	}
}

// RegisterRideRequest is the HTTP request body for registering an offering.
type RegisterRideRequest struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	VehicleClass string  `json:"vehicle_class"`
	DistanceKm   float64 `json:"distance_km"`
}

// RegisterRideResponse is the HTTP response for registering an offering.
type RegisterRideResponse struct {
	RideID int64 `json:"ride_id"`
}

// RideResponse is the HTTP representation of a ride offering.
type RideResponse struct {
	ID           int64   `json:"id"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	VehicleClass string  `json:"vehicle_class"`
	DistanceKm   float64 `json:"distance_km"`
}

// StartRideRequest is the HTTP request body for starting a ride.
type StartRideRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Selection   *int64 `json:"selection,omitempty"`
}

// StartRideResponse is the HTTP response for starting a ride.
type StartRideResponse struct {
	RideID int64 `json:"ride_id"`
}

// ReceiptResponse is the HTTP representation of a ride receipt.
type ReceiptResponse struct {
	ReceiptID       string    `json:"receipt_id,omitempty"`
	RideID          int64     `json:"ride_id"`
	DurationMinutes int64     `json:"duration_minutes"`
	DistanceKm      float64   `json:"distance_km"`
	Fare            float64   `json:"fare"`
	EndedAt         time.Time `json:"ended_at"`
}

// RegisterRide handles POST /v1/rides
func (h *RideHandler) RegisterRide(c *gin.Context) {
	var req RegisterRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, catalog.ErrInvalidRideData)
		return
	}

	class, ok := domain.ParseVehicleClass(req.VehicleClass)
	if !ok {
		respondError(c, catalog.ErrInvalidRideData)
		return
	}

	rideID, err := h.catalog.Register(req.Origin, req.Destination, class, req.DistanceKm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RegisterRideResponse{RideID: int64(rideID)})
}

// ListAvailable handles GET /v1/rides/available
func (h *RideHandler) ListAvailable(c *gin.Context) {
	offerings := h.catalog.ListAvailable()

	response := make([]RideResponse, 0, len(offerings))
	for _, offering := range offerings {
		response = append(response, RideResponse{
			ID:           int64(offering.ID),
			Origin:       offering.Origin,
			Destination:  offering.Destination,
			VehicleClass: string(offering.Class),
			DistanceKm:   offering.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, gin.H{"rides": response, "count": len(response)})
}

// StartRide handles POST /v1/rides/start
func (h *RideHandler) StartRide(c *gin.Context) {
	riderID := c.GetString(middleware.ContextRiderIDKey)

	var req StartRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "origin and destination are required"})
		return
	}

	var selection *domain.RideID
	if req.Selection != nil {
		id := domain.RideID(*req.Selection)
		selection = &id
	}

	confirmation, err := h.sessionService.StartRide(c.Request.Context(), riderID, req.Origin, req.Destination, selection)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StartRideResponse{RideID: int64(confirmation.RideID)})
}

// EndRide handles POST /v1/rides/end
func (h *RideHandler) EndRide(c *gin.Context) {
	riderID := c.GetString(middleware.ContextRiderIDKey)

	receipt, err := h.sessionService.EndRide(c.Request.Context(), riderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ReceiptResponse{
		ReceiptID:       receipt.ID,
		RideID:          int64(receipt.RideID),
		DurationMinutes: receipt.DurationMinutes,
		DistanceKm:      receipt.DistanceKm,
		Fare:            receipt.Fare,
		EndedAt:         receipt.EndedAt,
	})
}

// ListReceipts handles GET /v1/receipts
func (h *RideHandler) ListReceipts(c *gin.Context) {
	riderID := c.GetString(middleware.ContextRiderIDKey)

	receipts, err := h.receiptRepo.GetByRiderID(c.Request.Context(), riderID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		response = append(response, ReceiptResponse{
			ReceiptID:       receipt.ID,
			RideID:          int64(receipt.RideID),
			DurationMinutes: receipt.DurationMinutes,
			DistanceKm:      receipt.DistanceKm,
			Fare:            receipt.Fare,
			EndedAt:         receipt.EndedAt,
		})
	}

	respondJSON(c, http.StatusOK, gin.H{"receipts": response, "count": len(response)})
}
