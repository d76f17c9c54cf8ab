// Package shipping contains the orchestration service that sits between the
// HTTP layer and the carrier adapters.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// defaultRequestTimeout bounds outbound carrier calls when no timeout is
// configured.
const defaultRequestTimeout = 10 * time.Second

// Pagination bounds for shipment history lookups.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CarrierStatusChecker reports whether a carrier is configured and enabled.
// It is satisfied by the carrier credential resolver.
type CarrierStatusChecker interface {
	IsActive(code shipping.CarrierCode) bool
}

// LabelArchive persists label documents outside the database. Implementations
// live in the storage package; archiving is best-effort and never blocks a
// purchased label from being returned.
type LabelArchive interface {
	Store(ctx context.Context, shipment *shipping.Shipment) (string, error)
}

// ShippingService orchestrates rate quoting, label purchase and tracking
// across carriers. Carrier-native details never cross this boundary; callers
// see canonical domain types and stable error codes.
type ShippingService struct {
	registry  shipping.CarrierRegistry
	shipments shipping.ShipmentRepository
	status    CarrierStatusChecker
	archive   LabelArchive
	cfg       config.ShippingConfig
	logger    *zap.Logger
}

// NewShippingService creates a new ShippingService. The archive may be nil
// when label archiving is disabled.
func NewShippingService(
	registry shipping.CarrierRegistry,
	shipments shipping.ShipmentRepository,
	status CarrierStatusChecker,
	archive LabelArchive,
	cfg config.ShippingConfig,
	logger *zap.Logger,
) *ShippingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingService{
		registry:  registry,
		shipments: shipments,
		status:    status,
		archive:   archive,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateLabel validates and purchases a shipping label. Validation and the
// carrier active gate both run before any network call; label purchase is
// billable and must never be reached with malformed input. The purchased
// shipment is stamped with the order id and persisted before returning.
func (s *ShippingService) CreateLabel(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "create_label")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, req.OrderID,
		telemetry.SpanAttrCarrier, string(req.Carrier),
	)

	if err := req.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	adapter, err := s.adapterFor(req.Carrier)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Origin == nil {
		origin := s.defaultOrigin()
		req.Origin = &origin
	}

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	shipment, err := adapter.CreateShipment(callCtx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.carrierError(req.Carrier, "create shipment", err)
	}

	shipment.OrderID = req.OrderID
	telemetry.SetAttribute(span, telemetry.SpanAttrTrackingNumber, shipment.TrackingNumber)

	if err := s.shipments.Save(ctx, shipment); err != nil {
		// The label is already purchased; log enough to recover the record
		// by hand before surfacing the failure.
		s.logger.Error("Failed to persist purchased shipment",
			zap.String("order_id", shipment.OrderID),
			zap.String("carrier", shipment.Carrier.String()),
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.archiveLabel(ctx, shipment)

	s.logger.Info("Shipping label created",
		zap.String("order_id", shipment.OrderID),
		zap.String("carrier", shipment.Carrier.String()),
		zap.String("service_code", shipment.ServiceCode),
		zap.String("tracking_number", shipment.TrackingNumber))
	return shipment, nil
}

// GetRates requests rate quotes from one carrier.
func (s *ShippingService) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "get_rates")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCarrier, string(req.Carrier))

	if err := req.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	adapter, err := s.adapterFor(req.Carrier)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Origin == nil {
		origin := s.defaultOrigin()
		req.Origin = &origin
	}

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	rates, err := adapter.GetRates(callCtx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.carrierError(req.Carrier, "get rates", err)
	}
	return rates, nil
}

// TrackShipment polls the carrier for current tracking status. When the
// tracking number matches a persisted shipment, the stored status advances
// through the state machine; terminal states never revert.
func (s *ShippingService) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "track_shipment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCarrier, string(req.Carrier),
		telemetry.SpanAttrTrackingNumber, req.TrackingNumber,
	)

	if err := req.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	adapter, err := s.adapterFor(req.Carrier)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	info, err := adapter.TrackShipment(callCtx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.carrierError(req.Carrier, "track shipment", err)
	}

	s.advancePersistedStatus(ctx, req.TrackingNumber, info.Status)
	return info, nil
}

// GetShipment returns one persisted shipment by id.
func (s *ShippingService) GetShipment(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shipping.ErrShipmentNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Shipment not found")
		}
		return nil, err
	}
	return shipment, nil
}

// ListShipments returns shipment history matching the filter, newest first,
// along with the total count for pagination.
func (s *ShippingService) ListShipments(ctx context.Context, filter shipping.ShipmentFilter) ([]shipping.Shipment, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	shipments, err := s.shipments.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shipments.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// adapterFor runs the carrier active gate and resolves the adapter. The gate
// runs first so a disabled carrier with registered credentials is still
// rejected.
func (s *ShippingService) adapterFor(code shipping.CarrierCode) (shipping.CarrierAdapter, error) {
	if !s.status.IsActive(code) {
		return nil, shared.NewDomainError(shared.CodeConfiguration,
			fmt.Sprintf("%s is not configured or active", code))
	}
	adapter, err := s.registry.Get(code)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeConfiguration,
			fmt.Sprintf("%s is not configured or active", code))
	}
	return adapter, nil
}

// advancePersistedStatus applies a tracking-derived status to the stored
// shipment. Lookup and persistence failures here are logged but never fail
// the tracking call; tracking is a read in the caller's eyes.
func (s *ShippingService) advancePersistedStatus(ctx context.Context, trackingNumber string, next shipping.ShipmentStatus) {
	if !next.IsValid() {
		return
	}
	shipment, err := s.shipments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if !errors.Is(err, shipping.ErrShipmentNotFound) {
			s.logger.Warn("Failed to load shipment for status advance",
				zap.String("tracking_number", trackingNumber),
				zap.Error(err))
		}
		return
	}
	if !shipment.AdvanceStatus(next) {
		return
	}
	if err := s.shipments.UpdateStatus(ctx, shipment.ID, next); err != nil {
		s.logger.Warn("Failed to persist shipment status advance",
			zap.String("tracking_number", trackingNumber),
			zap.String("status", string(next)),
			zap.Error(err))
	}
}

// archiveLabel stores the label document in the archive when one is
// configured. Failures are logged and swallowed: the label is already
// purchased and persisted.
func (s *ShippingService) archiveLabel(ctx context.Context, shipment *shipping.Shipment) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Store(ctx, shipment)
	if err != nil {
		s.logger.Warn("Failed to archive label",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err))
		return
	}
	if key != "" {
		s.logger.Debug("Label archived",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.String("object_key", key))
	}
}

// defaultOrigin builds the configured ship-from address.
func (s *ShippingService) defaultOrigin() shipping.Address {
	from := s.cfg.ShipFrom
	return shipping.Address{
		Name:         from.Name,
		Company:      from.Company,
		AddressLine1: from.AddressLine1,
		AddressLine2: from.AddressLine2,
		City:         from.City,
		State:        from.State,
		PostalCode:   from.PostalCode,
		Country:      from.Country,
		Phone:        from.Phone,
	}
}

func (s *ShippingService) requestTimeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return defaultRequestTimeout
}

// carrierError translates adapter sentinel errors into stable domain error
// codes. The underlying carrier detail is logged here and never surfaced to
// callers.
func (s *ShippingService) carrierError(carrier shipping.CarrierCode, op string, err error) error {
	s.logger.Warn("Carrier call failed",
		zap.String("carrier", carrier.String()),
		zap.String("operation", op),
		zap.Error(err))

	display := carrier.DisplayName()
	switch {
	case errors.Is(err, shipping.ErrCarrierTimeout):
		return shared.NewDomainError(shared.CodeCarrierTimeout,
			fmt.Sprintf("%s did not respond in time", display))
	case errors.Is(err, shipping.ErrCarrierAuthFailed):
		return shared.NewDomainError(shared.CodeCarrierError,
			fmt.Sprintf("%s rejected the configured credentials", display))
	case errors.Is(err, shipping.ErrCarrierNotSupported),
		errors.Is(err, shipping.ErrCarrierNotConfigured),
		errors.Is(err, shipping.ErrMissingCredentials):
		return shared.NewDomainError(shared.CodeConfiguration,
			fmt.Sprintf("%s is not configured or active", carrier))
	case errors.Is(err, shipping.ErrCarrierUnavailable),
		errors.Is(err, shipping.ErrCarrierRequestFailed),
		errors.Is(err, shipping.ErrCarrierInvalidResponse):
		return shared.NewDomainError(shared.CodeCarrierError,
			fmt.Sprintf("%s could not complete the request", display))
	default:
		return err
	}
}
