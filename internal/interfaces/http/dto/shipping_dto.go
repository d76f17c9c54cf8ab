package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shipping"
)

// The shipping DTOs only enforce top-level shape; domain rules (address
// completeness, package bounds, customs requirements) live in the domain
// request Validate methods.

// CreateLabelRequest is the payload for purchasing a shipping label
type CreateLabelRequest struct {
	OrderID     string            `json:"order_id" binding:"required"`
	Carrier     string            `json:"carrier" binding:"required"`
	ServiceCode string            `json:"service_code" binding:"required"`
	Origin      *shipping.Address `json:"origin,omitempty"`
	Destination shipping.Address  `json:"destination" binding:"required"`
	Packages    []shipping.Package `json:"packages" binding:"required,min=1"`

	LabelFormat string `json:"label_format,omitempty"`
	LabelSize   string `json:"label_size,omitempty"`

	SignatureRequired    bool                         `json:"signature_required,omitempty"`
	SaturdayDelivery     bool                         `json:"saturday_delivery,omitempty"`
	InsuranceAmount      *decimal.Decimal             `json:"insurance_amount,omitempty"`
	ReferenceNumber      string                       `json:"reference_number,omitempty"`
	Customs              *shipping.CustomsDeclaration `json:"customs_declaration,omitempty"`
	IsReturnLabel        bool                         `json:"is_return_label,omitempty"`
	PickupAccountNumber  string                       `json:"pickup_account_number,omitempty"`
	BillingAccountNumber string                       `json:"billing_account_number,omitempty"`
	Metadata             map[string]string            `json:"metadata,omitempty"`
}

// ToDomain converts the request to a domain label purchase request
func (r *CreateLabelRequest) ToDomain() *shipping.CreateShipmentRequest {
	req := &shipping.CreateShipmentRequest{
		OrderID:              r.OrderID,
		Carrier:              normalizeCarrier(r.Carrier),
		ServiceCode:          r.ServiceCode,
		Origin:               r.Origin,
		Destination:          r.Destination,
		Packages:             r.Packages,
		SignatureRequired:    r.SignatureRequired,
		SaturdayDelivery:     r.SaturdayDelivery,
		InsuranceAmount:      r.InsuranceAmount,
		ReferenceNumber:      r.ReferenceNumber,
		Customs:              r.Customs,
		IsReturnLabel:        r.IsReturnLabel,
		PickupAccountNumber:  r.PickupAccountNumber,
		BillingAccountNumber: r.BillingAccountNumber,
		Metadata:             r.Metadata,
	}
	req.SetRawLabelOptions(r.LabelFormat, r.LabelSize)
	return req
}

// RateQuoteRequest is the payload for requesting rate quotes from a carrier
type RateQuoteRequest struct {
	Carrier     string             `json:"carrier" binding:"required"`
	ServiceCode string             `json:"service_code,omitempty"`
	Origin      *shipping.Address  `json:"origin,omitempty"`
	Destination shipping.Address   `json:"destination" binding:"required"`
	Packages    []shipping.Package `json:"packages" binding:"required,min=1"`
}

// ToDomain converts the request to a domain rate request
func (r *RateQuoteRequest) ToDomain() *shipping.RateRequest {
	return &shipping.RateRequest{
		Carrier:     normalizeCarrier(r.Carrier),
		ServiceCode: r.ServiceCode,
		Origin:      r.Origin,
		Destination: r.Destination,
		Packages:    r.Packages,
	}
}

// TrackShipmentRequest captures the tracking lookup path parameters
type TrackShipmentRequest struct {
	Carrier        string `uri:"carrier" binding:"required"`
	TrackingNumber string `uri:"tracking_number" binding:"required"`
}

// ToDomain converts the request to a domain tracking request
func (r *TrackShipmentRequest) ToDomain() *shipping.TrackingRequest {
	return &shipping.TrackingRequest{
		Carrier:        normalizeCarrier(r.Carrier),
		TrackingNumber: strings.TrimSpace(r.TrackingNumber),
	}
}

// ShipmentListRequest captures shipment history query parameters
type ShipmentListRequest struct {
	OrderID string     `form:"order_id"`
	Carrier string     `form:"carrier"`
	Status  string     `form:"status"`
	Search  string     `form:"search"`
	From    *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To      *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit   int        `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset  int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the request to a repository filter
func (r *ShipmentListRequest) ToFilter() shipping.ShipmentFilter {
	return shipping.ShipmentFilter{
		OrderID: strings.TrimSpace(r.OrderID),
		Carrier: normalizeCarrier(r.Carrier),
		Status:  shipping.ShipmentStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Search:  strings.TrimSpace(r.Search),
		From:    r.From,
		To:      r.To,
		Limit:   r.Limit,
		Offset:  r.Offset,
	}
}

func normalizeCarrier(raw string) shipping.CarrierCode {
	return shipping.CarrierCode(strings.ToLower(strings.TrimSpace(raw)))
}
