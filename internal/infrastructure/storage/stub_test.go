package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shipping"
)

func TestNoopLabelArchive_Store(t *testing.T) {
	archive := NewNoopLabelArchive()

	t.Run("returns empty key", func(t *testing.T) {
		key, err := archive.Store(context.Background(), &shipping.Shipment{ID: uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, key)
	})

	t.Run("nil shipment returns error", func(t *testing.T) {
		_, err := archive.Store(context.Background(), nil)
		require.Error(t, err)
	})
}

func TestNoopLabelArchive_LabelURL(t *testing.T) {
	archive := NewNoopLabelArchive()

	_, _, err := archive.LabelURL(context.Background(), "labels/key.pdf", 15*time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestNoopLabelArchive_Delete(t *testing.T) {
	archive := NewNoopLabelArchive()
	assert.NoError(t, archive.Delete(context.Background(), "labels/key.pdf"))
}
