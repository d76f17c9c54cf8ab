// Package shipping defines the canonical shipping model and the ports
// implemented by the carrier adapters in the infrastructure layer.
package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Carrier Errors
// ---------------------------------------------------------------------------

var (
	// Carrier selection / configuration errors. These are raised before any
	// network call is made.
	ErrCarrierNotSupported  = errors.New("shipping: carrier not supported")
	ErrCarrierNotConfigured = errors.New("shipping: carrier not configured")
	ErrMissingCredentials   = errors.New("shipping: missing carrier credentials")

	// Carrier call errors. ErrCarrierTimeout is deliberately distinct from
	// ErrCarrierRequestFailed so callers can tell "carrier said no" apart
	// from "carrier never answered".
	ErrCarrierUnavailable     = errors.New("shipping: carrier temporarily unavailable")
	ErrCarrierRequestFailed   = errors.New("shipping: carrier request failed")
	ErrCarrierInvalidResponse = errors.New("shipping: invalid carrier response")
	ErrCarrierAuthFailed      = errors.New("shipping: carrier authentication failed")
	ErrCarrierTimeout         = errors.New("shipping: carrier request timed out")

	// ErrShipmentNotFound is returned by lookups against the shipment store.
	ErrShipmentNotFound = errors.New("shipping: shipment not found")
)

// ---------------------------------------------------------------------------
// CarrierCode
// ---------------------------------------------------------------------------

// CarrierCode identifies a supported shipping carrier.
type CarrierCode string

const (
	// CarrierUSPS is the United States Postal Service (legacy XML API)
	CarrierUSPS CarrierCode = "usps"
	// CarrierFedEx is FedEx (OAuth2 JSON REST API)
	CarrierFedEx CarrierCode = "fedex"
	// CarrierUPS is United Parcel Service (OAuth2 JSON REST API)
	CarrierUPS CarrierCode = "ups"
	// CarrierDHL is DHL eCommerce (OAuth2 JSON REST API)
	CarrierDHL CarrierCode = "dhl"
	// CarrierCanadaPost is Canada Post (Basic-auth XML REST API)
	CarrierCanadaPost CarrierCode = "canada_post"
)

// AllCarriers lists every supported carrier code.
func AllCarriers() []CarrierCode {
	return []CarrierCode{CarrierUSPS, CarrierFedEx, CarrierUPS, CarrierDHL, CarrierCanadaPost}
}

// IsValid returns true if the carrier code is one of the supported carriers
func (c CarrierCode) IsValid() bool {
	switch c {
	case CarrierUSPS, CarrierFedEx, CarrierUPS, CarrierDHL, CarrierCanadaPost:
		return true
	default:
		return false
	}
}

// String returns the string representation of CarrierCode
func (c CarrierCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the carrier
func (c CarrierCode) DisplayName() string {
	switch c {
	case CarrierUSPS:
		return "USPS"
	case CarrierFedEx:
		return "FedEx"
	case CarrierUPS:
		return "UPS"
	case CarrierDHL:
		return "DHL"
	case CarrierCanadaPost:
		return "Canada Post"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// ShippingRate
// ---------------------------------------------------------------------------

// ShippingRate is a canonical rate quote. It always carries the carrier,
// currency and service code alongside the amount - never a bare number.
type ShippingRate struct {
	// Carrier identifies which carrier produced this quote
	Carrier CarrierCode `json:"carrier"`
	// ServiceName is the human-readable service name
	ServiceName string `json:"service_name"`
	// ServiceCode is the carrier-native service code
	ServiceCode string `json:"service_code"`
	// Rate is the quoted amount
	Rate decimal.Decimal `json:"rate"`
	// Currency is the ISO currency code for Rate
	Currency string `json:"currency"`
	// RetailRate is the undiscounted counter rate, when the carrier reports one
	RetailRate *decimal.Decimal `json:"retail_rate,omitempty"`
	// DeliveryDays is the estimated transit time in days, when reported
	DeliveryDays *int `json:"delivery_days,omitempty"`
	// DeliveryDate is the estimated delivery date, when reported
	DeliveryDate *string `json:"delivery_date,omitempty"`
	// BillableWeight is the weight the quote was computed against, in pounds
	BillableWeight *decimal.Decimal `json:"billable_weight,omitempty"`
}

// ---------------------------------------------------------------------------
// CarrierAdapter Port Interface
// ---------------------------------------------------------------------------

// CarrierAdapter is the port interface implemented once per carrier.
// The contract is identical across carriers despite wildly different wire
// formats; carrier-native payload shapes never leave the adapter.
type CarrierAdapter interface {
	// Carrier returns the carrier code this adapter handles
	Carrier() CarrierCode

	// GetRates requests rate quotes for the given shipment parameters
	GetRates(ctx context.Context, req *RateRequest) ([]ShippingRate, error)

	// CreateShipment purchases a label. This is a billable, irreversible
	// operation; callers must validate the request before invoking it.
	CreateShipment(ctx context.Context, req *CreateShipmentRequest) (*Shipment, error)

	// TrackShipment polls the carrier for the current tracking status
	TrackShipment(ctx context.Context, req *TrackingRequest) (*TrackingInfo, error)
}

// CarrierRegistry resolves carrier codes to adapters. Adding a carrier means
// registering an adapter, never touching orchestration logic.
type CarrierRegistry interface {
	// Get returns the adapter for the given carrier code
	Get(carrier CarrierCode) (CarrierAdapter, error)

	// List returns all registered adapters
	List() []CarrierAdapter
}
