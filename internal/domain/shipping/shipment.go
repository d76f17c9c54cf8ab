package shipping

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Address
// ---------------------------------------------------------------------------

// Address is a shipment origin or destination. After sanitization,
// AddressLine1, City, State, PostalCode and Country must all be non-empty.
type Address struct {
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
	// Residential is only meaningful on destinations
	Residential bool `json:"residential,omitempty"`
}

// IsDomestic returns true for US destinations (including empty country,
// which defaults to US)
func (a *Address) IsDomestic() bool {
	country := strings.ToUpper(strings.TrimSpace(a.Country))
	return country == "" || country == "US" || country == "USA" || country == "UNITED STATES"
}

// ---------------------------------------------------------------------------
// Package
// ---------------------------------------------------------------------------

// Package describes one parcel in a shipment. Weight is in pounds,
// dimensions in inches.
type Package struct {
	Weight decimal.Decimal `json:"weight"`
	// Dimensions are optional; when present each must be in (0, 108]
	Length       *decimal.Decimal `json:"length,omitempty"`
	Width        *decimal.Decimal `json:"width,omitempty"`
	Height       *decimal.Decimal `json:"height,omitempty"`
	InsuredValue *decimal.Decimal `json:"insured_value,omitempty"`
	ContentsType string           `json:"contents_type,omitempty"`
	Description  string           `json:"description,omitempty"`
}

// HasDimensions returns true if all three dimensions are present
func (p *Package) HasDimensions() bool {
	return p.Length != nil && p.Width != nil && p.Height != nil
}

// ---------------------------------------------------------------------------
// Label format / size
// ---------------------------------------------------------------------------

// LabelFormat is the file format of an issued label.
type LabelFormat string

const (
	LabelFormatPDF LabelFormat = "PDF"
	LabelFormatPNG LabelFormat = "PNG"
	LabelFormatZPL LabelFormat = "ZPL"
)

// NormalizeLabelFormat normalizes a label format case-insensitively,
// defaulting to PDF when absent. Unknown formats return false.
func NormalizeLabelFormat(raw string) (LabelFormat, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return LabelFormatPDF, true
	case "PDF":
		return LabelFormatPDF, true
	case "PNG":
		return LabelFormatPNG, true
	case "ZPL":
		return LabelFormatZPL, true
	default:
		return "", false
	}
}

// LabelSize is the physical size of an issued label.
type LabelSize string

const (
	LabelSize4x6  LabelSize = "4x6"
	LabelSize8x11 LabelSize = "8x11"
)

// NormalizeLabelSize normalizes a label size case-insensitively, defaulting
// to 4x6 when absent. Unknown sizes return false.
func NormalizeLabelSize(raw string) (LabelSize, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return LabelSize4x6, true
	case "4x6":
		return LabelSize4x6, true
	case "8x11":
		return LabelSize8x11, true
	default:
		return "", false
	}
}

// ---------------------------------------------------------------------------
// Shipment
// ---------------------------------------------------------------------------

// Shipment is a purchased label. It is created once at label issuance and is
// immutable except for Status, which only advances through the state machine.
// A shipment belongs to exactly one order; an order may own many shipments.
type Shipment struct {
	ID      uuid.UUID   `json:"id"`
	OrderID string      `json:"order_id"`
	Carrier CarrierCode `json:"carrier"`
	// ServiceCode is the carrier-native service the label was purchased for
	ServiceCode    string `json:"service_code"`
	ServiceName    string `json:"service_name,omitempty"`
	TrackingNumber string `json:"tracking_number"`
	// LabelData is the opaque label payload, base64-encoded, tagged by LabelFormat
	LabelData   string          `json:"label_data,omitempty"`
	LabelFormat LabelFormat     `json:"label_format"`
	LabelSize   LabelSize       `json:"label_size"`
	Rate        decimal.Decimal `json:"rate"`
	Currency    string          `json:"currency"`
	Origin      Address         `json:"origin"`
	Destination Address         `json:"destination"`
	Status      ShipmentStatus  `json:"status"`
	// ReferenceNumber is a caller-supplied reference printed on the label
	ReferenceNumber string `json:"reference_number,omitempty"`
	// CarrierShipmentID is the carrier-assigned shipment identifier
	CarrierShipmentID string    `json:"carrier_shipment_id,omitempty"`
	IsReturnLabel     bool      `json:"is_return_label,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AdvanceStatus applies a tracking-derived status through the state machine.
// It returns true if the status changed. Events reported after a terminal
// state never revert the status.
func (s *Shipment) AdvanceStatus(next ShipmentStatus) bool {
	if !s.Status.CanTransitionTo(next) {
		return false
	}
	s.Status = next
	return true
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackingEvent is one carrier-reported scan. Events are append-only and kept
// in the order the carrier reports them; this layer does not re-sort or
// deduplicate across polls.
type TrackingEvent struct {
	Timestamp time.Time `json:"timestamp"`
	// Status is the carrier-native status string for this event
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"`
}

// TrackingInfo is the canonical result of a synchronous tracking poll.
type TrackingInfo struct {
	TrackingNumber string      `json:"tracking_number"`
	Carrier        CarrierCode `json:"carrier"`
	// Status is the canonical status derived from the most recent event
	Status            ShipmentStatus  `json:"status"`
	Events            []TrackingEvent `json:"events"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time      `json:"actual_delivery,omitempty"`
}

// ---------------------------------------------------------------------------
// ShipmentRepository Port Interface
// ---------------------------------------------------------------------------

// ShipmentFilter narrows shipment history lookups. Zero values mean "no
// constraint". Search matches tracking number, reference number and order id.
type ShipmentFilter struct {
	OrderID string
	Carrier CarrierCode
	Status  ShipmentStatus
	Search  string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// ShipmentRepository persists issued shipments and serves history lookups.
type ShipmentRepository interface {
	// Save inserts or updates a shipment
	Save(ctx context.Context, shipment *Shipment) error

	// FindByID returns a shipment by its id, or ErrShipmentNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByTrackingNumber returns a shipment by tracking number, or ErrShipmentNotFound
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)

	// FindAll returns shipments matching the filter, newest first
	FindAll(ctx context.Context, filter ShipmentFilter) ([]Shipment, error)

	// Count returns the number of shipments matching the filter
	Count(ctx context.Context, filter ShipmentFilter) (int64, error)

	// UpdateStatus persists a status advance
	UpdateStatus(ctx context.Context, id uuid.UUID, status ShipmentStatus) error
}
