package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shipping"
)

func newMockShipmentRepository(t *testing.T) (*GormShipmentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormShipmentRepository(db), mock, mockDB
}

var shipmentColumns = []string{
	"id", "order_id", "carrier", "service_code", "service_name",
	"tracking_number", "label_data", "label_format", "label_size",
	"rate", "currency", "origin", "destination", "status",
	"reference_number", "carrier_shipment_id", "is_return_label",
	"created_at", "updated_at",
}

func shipmentRow(id uuid.UUID) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(shipmentColumns).AddRow(
		id, "ORD-1001", "ups", "03", "UPS Ground",
		"1Z12345E0205271688", "R0lGODli", "pdf", "4x6",
		"14.5500", "USD",
		`{"name":"Warehouse","city":"Austin","state":"TX","postal_code":"78701","country":"US"}`,
		`{"name":"Jane Doe","city":"Denver","state":"CO","postal_code":"80202","country":"US"}`,
		"purchased", "ORD-1001", "", false, now, now,
	)
}

func TestGormShipmentRepository_FindByID(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(shipmentRow(id))

	shipment, err := repo.FindByID(context.Background(), id)

	assert.NoError(t, err)
	assert.Equal(t, id, shipment.ID)
	assert.Equal(t, "ORD-1001", shipment.OrderID)
	assert.Equal(t, shipping.CarrierUPS, shipment.Carrier)
	assert.Equal(t, "1Z12345E0205271688", shipment.TrackingNumber)
	assert.True(t, shipment.Rate.Equal(decimal.RequireFromString("14.55")))
	assert.Equal(t, "Austin", shipment.Origin.City)
	assert.Equal(t, "Denver", shipment.Destination.City)
	assert.Equal(t, shipping.StatusPurchased, shipment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows(shipmentColumns))

	shipment, err := repo.FindByID(context.Background(), id)

	assert.Nil(t, shipment)
	assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_FindByTrackingNumber(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE tracking_number = \$1 ORDER BY .* LIMIT .*`).
		WithArgs("1Z12345E0205271688", 1).
		WillReturnRows(shipmentRow(id))

	shipment, err := repo.FindByTrackingNumber(context.Background(), "1Z12345E0205271688")

	assert.NoError(t, err)
	assert.Equal(t, id, shipment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_FindByTrackingNumber_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE tracking_number = \$1 ORDER BY .* LIMIT .*`).
		WithArgs("NOPE", 1).
		WillReturnRows(sqlmock.NewRows(shipmentColumns))

	shipment, err := repo.FindByTrackingNumber(context.Background(), "NOPE")

	assert.Nil(t, shipment)
	assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_Save(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	shipment := &shipping.Shipment{
		ID:             uuid.New(),
		OrderID:        "ORD-2002",
		Carrier:        shipping.CarrierFedEx,
		ServiceCode:    "FEDEX_GROUND",
		ServiceName:    "FedEx Ground",
		TrackingNumber: "794958712345",
		LabelData:      "JVBERi0xLjQ=",
		LabelFormat:    shipping.LabelFormatPDF,
		LabelSize:      shipping.LabelSize4x6,
		Currency:       "USD",
		Origin:         shipping.Address{Name: "Warehouse", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"},
		Destination:    shipping.Address{Name: "Jane Doe", City: "Denver", State: "CO", PostalCode: "80202", Country: "US"},
		Status:         shipping.StatusPurchased,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO "shipments" .* ON CONFLICT \("id"\) DO UPDATE SET .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), shipment)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_FindAll_WithFilter(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE order_id = \$1 AND carrier = \$2 ORDER BY created_at DESC LIMIT .*`).
		WithArgs("ORD-1001", "ups", 20).
		WillReturnRows(shipmentRow(id))

	shipments, err := repo.FindAll(context.Background(), shipping.ShipmentFilter{
		OrderID: "ORD-1001",
		Carrier: shipping.CarrierUPS,
		Limit:   20,
	})

	assert.NoError(t, err)
	assert.Len(t, shipments, 1)
	assert.Equal(t, id, shipments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_FindAll_Search(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "shipments" WHERE \(tracking_number LIKE \$1 OR reference_number LIKE \$2 OR order_id LIKE \$3\) ORDER BY created_at DESC`).
		WithArgs("%1Z12345%", "%1Z12345%", "%1Z12345%").
		WillReturnRows(shipmentRow(id))

	shipments, err := repo.FindAll(context.Background(), shipping.ShipmentFilter{Search: "1Z12345"})

	assert.NoError(t, err)
	assert.Len(t, shipments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_Count(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "shipments" WHERE status = \$1`).
		WithArgs("delivered").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), shipping.ShipmentFilter{Status: shipping.StatusDelivered})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_UpdateStatus(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE "shipments" SET .* WHERE id = \$3`).
		WithArgs("in_transit", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), id, shipping.StatusInTransit)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormShipmentRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockShipmentRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE "shipments" SET .* WHERE id = \$3`).
		WithArgs("in_transit", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, shipping.StatusInTransit)

	assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
