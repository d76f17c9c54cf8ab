package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shipping"
)

// ShipmentModel is the persistence model for the Shipment domain entity.
// Addresses are stored as jsonb documents; they are read back whole and
// never queried field-by-field.
type ShipmentModel struct {
	ID                uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID           string                  `gorm:"type:varchar(100);not null;index"`
	Carrier           shipping.CarrierCode    `gorm:"type:varchar(20);not null;index"`
	ServiceCode       string                  `gorm:"type:varchar(50);not null"`
	ServiceName       string                  `gorm:"type:varchar(100)"`
	TrackingNumber    string                  `gorm:"type:varchar(100);not null;uniqueIndex"`
	LabelData         string                  `gorm:"type:text"`
	LabelFormat       shipping.LabelFormat    `gorm:"type:varchar(10);not null"`
	LabelSize         shipping.LabelSize      `gorm:"type:varchar(10);not null"`
	Rate              decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string                  `gorm:"type:varchar(3);not null"`
	Origin            string                  `gorm:"type:jsonb;not null"`
	Destination       string                  `gorm:"type:jsonb;not null"`
	Status            shipping.ShipmentStatus `gorm:"type:varchar(20);not null;index"`
	ReferenceNumber   string                  `gorm:"type:varchar(100);index"`
	CarrierShipmentID string                  `gorm:"type:varchar(100)"`
	IsReturnLabel     bool                    `gorm:"not null;default:false"`
	CreatedAt         time.Time               `gorm:"not null;index"`
	UpdatedAt         time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment entity.
func (m *ShipmentModel) ToDomain() (*shipping.Shipment, error) {
	var origin, destination shipping.Address
	if err := json.Unmarshal([]byte(m.Origin), &origin); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(m.Destination), &destination); err != nil {
		return nil, err
	}

	return &shipping.Shipment{
		ID:                m.ID,
		OrderID:           m.OrderID,
		Carrier:           m.Carrier,
		ServiceCode:       m.ServiceCode,
		ServiceName:       m.ServiceName,
		TrackingNumber:    m.TrackingNumber,
		LabelData:         m.LabelData,
		LabelFormat:       m.LabelFormat,
		LabelSize:         m.LabelSize,
		Rate:              m.Rate,
		Currency:          m.Currency,
		Origin:            origin,
		Destination:       destination,
		Status:            m.Status,
		ReferenceNumber:   m.ReferenceNumber,
		CarrierShipmentID: m.CarrierShipmentID,
		IsReturnLabel:     m.IsReturnLabel,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Shipment entity.
func (m *ShipmentModel) FromDomain(s *shipping.Shipment) error {
	origin, err := json.Marshal(s.Origin)
	if err != nil {
		return err
	}
	destination, err := json.Marshal(s.Destination)
	if err != nil {
		return err
	}

	m.ID = s.ID
	m.OrderID = s.OrderID
	m.Carrier = s.Carrier
	m.ServiceCode = s.ServiceCode
	m.ServiceName = s.ServiceName
	m.TrackingNumber = s.TrackingNumber
	m.LabelData = s.LabelData
	m.LabelFormat = s.LabelFormat
	m.LabelSize = s.LabelSize
	m.Rate = s.Rate
	m.Currency = s.Currency
	m.Origin = string(origin)
	m.Destination = string(destination)
	m.Status = s.Status
	m.ReferenceNumber = s.ReferenceNumber
	m.CarrierShipmentID = s.CarrierShipmentID
	m.IsReturnLabel = s.IsReturnLabel
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
	return nil
}
