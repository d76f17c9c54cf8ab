package storage

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/shipping"
)

// NoopLabelArchive is used when the label archive is disabled. Labels stay
// on the shipment record only; Store reports an empty key and URL requests
// fail so callers fall back to the persisted label data.
type NoopLabelArchive struct{}

// NewNoopLabelArchive creates a new NoopLabelArchive
func NewNoopLabelArchive() *NoopLabelArchive {
	return &NoopLabelArchive{}
}

// Store does nothing and returns an empty object key
func (a *NoopLabelArchive) Store(ctx context.Context, shipment *shipping.Shipment) (string, error) {
	if shipment == nil {
		return "", errors.New("shipment is required")
	}
	return "", nil
}

// LabelURL always fails because nothing is archived
func (a *NoopLabelArchive) LabelURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "", time.Time{}, errors.New("label archive is disabled")
}

// Delete is a no-op
func (a *NoopLabelArchive) Delete(ctx context.Context, key string) error {
	return nil
}
