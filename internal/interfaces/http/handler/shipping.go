package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ShippingHandler handles shipping-related API endpoints
type ShippingHandler struct {
	BaseHandler
	shippingService *shippingapp.ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService *shippingapp.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
	}
}

// CreateLabel godoc
// @Summary      Purchase a shipping label
// @Description  Purchase a label from the selected carrier for one order
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateLabelRequest true "Label purchase request"
// @Success      201 {object} dto.Response{data=shipping.Shipment}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipping/labels [post]
func (h *ShippingHandler) CreateLabel(c *gin.Context) {
	var req dto.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	shipment, err := h.shippingService.CreateLabel(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, shipment)
}

// GetRates godoc
// @Summary      Get rate quotes
// @Description  Ask one carrier for rate quotes for a prospective shipment
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request body dto.RateQuoteRequest true "Rate quote request"
// @Success      200 {object} dto.Response{data=[]shipping.ShippingRate}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipping/rates [post]
func (h *ShippingHandler) GetRates(c *gin.Context) {
	var req dto.RateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rates, err := h.shippingService.GetRates(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rates)
}

// Track godoc
// @Summary      Track a shipment
// @Description  Poll the carrier for the current status of a tracking number
// @Tags         shipping
// @Produce      json
// @Param        carrier path string true "Carrier code" Enums(usps, fedex, ups, dhl, canada_post)
// @Param        tracking_number path string true "Carrier tracking number"
// @Success      200 {object} dto.Response{data=shipping.TrackingInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipping/track/{carrier}/{tracking_number} [get]
func (h *ShippingHandler) Track(c *gin.Context) {
	var req dto.TrackShipmentRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	info, err := h.shippingService.TrackShipment(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// GetShipment godoc
// @Summary      Get shipment by ID
// @Description  Retrieve a stored shipment by its ID
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shipping.Shipment}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id} [get]
func (h *ShippingHandler) GetShipment(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	shipment, err := h.shippingService.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// ListShipments godoc
// @Summary      List shipments
// @Description  Retrieve shipment history with optional filtering
// @Tags         shipments
// @Produce      json
// @Param        order_id query string false "Order ID"
// @Param        carrier query string false "Carrier code" Enums(usps, fedex, ups, dhl, canada_post)
// @Param        status query string false "Shipment status" Enums(label_created, in_transit, out_for_delivery, delivered, exception, returned)
// @Param        search query string false "Search term (tracking number, reference, order id)"
// @Param        from query string false "Created-at lower bound (ISO 8601)" format(date-time)
// @Param        to query string false "Created-at upper bound (ISO 8601)" format(date-time)
// @Param        limit query int false "Page size" default(20) maximum(100)
// @Param        offset query int false "Offset" default(0)
// @Success      200 {object} dto.Response{data=[]shipping.Shipment,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments [get]
func (h *ShippingHandler) ListShipments(c *gin.Context) {
	var req dto.ShipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.ToFilter()
	shipments, total, err := h.shippingService.ListShipments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// The service applies its own default and cap; mirror them for the meta
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Offset/limit + 1

	h.SuccessWithMeta(c, shipments, total, page, limit)
}

// RegisterRoutes registers all shipping routes
func (h *ShippingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shippingGroup := rg.Group("/shipping")
	{
		shippingGroup.POST("/labels", middleware.RequireScope(middleware.ScopeShippingWrite), h.CreateLabel)
		shippingGroup.POST("/rates", middleware.RequireScope(middleware.ScopeShippingRead), h.GetRates)
		shippingGroup.GET("/track/:carrier/:tracking_number", middleware.RequireScope(middleware.ScopeShippingRead), h.Track)
	}

	shipmentsGroup := rg.Group("/shipments")
	{
		shipmentsGroup.GET("", middleware.RequireScope(middleware.ScopeShippingRead), h.ListShipments)
		shipmentsGroup.GET("/:id", middleware.RequireScope(middleware.ScopeShippingRead), h.GetShipment)
	}
}
