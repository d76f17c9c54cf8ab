package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormShipmentRepository implements shipping.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Save inserts or updates a shipment
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	var model models.ShipmentModel
	if err := model.FromDomain(shipment); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&model).Error
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrShipmentNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByTrackingNumber finds a shipment by its tracking number
func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Where("tracking_number = ?", trackingNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrShipmentNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns shipments matching the filter, newest first
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shipping.ShipmentFilter) ([]shipping.Shipment, error) {
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.ShipmentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	shipments := make([]shipping.Shipment, 0, len(rows))
	for i := range rows {
		shipment, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *shipment)
	}
	return shipments, nil
}

// Count returns the number of shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shipping.ShipmentFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Model(&models.ShipmentModel{}).
		Count(&count).Error
	return count, err
}

// UpdateStatus persists a status advance
func (r *GormShipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shipping.ShipmentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shipping.ErrShipmentNotFound
	}
	return nil
}

// applyFilter translates a ShipmentFilter into WHERE clauses. Search matches
// tracking number, reference number and order id.
func (r *GormShipmentRepository) applyFilter(db *gorm.DB, filter shipping.ShipmentFilter) *gorm.DB {
	if filter.OrderID != "" {
		db = db.Where("order_id = ?", filter.OrderID)
	}
	if filter.Carrier != "" {
		db = db.Where("carrier = ?", filter.Carrier)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where("tracking_number LIKE ? OR reference_number LIKE ? OR order_id LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}
	return db
}
