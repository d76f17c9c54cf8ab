package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestDHLConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *DHLConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &DHLConfig{ClientID: "id", ClientSecret: "secret", PickupAccount: "5351244"},
			wantErr: nil,
		},
		{
			name:    "missing client ID",
			config:  &DHLConfig{ClientSecret: "secret", PickupAccount: "5351244"},
			wantErr: ErrDHLConfigMissingClientID,
		},
		{
			name:    "missing client secret",
			config:  &DHLConfig{ClientID: "id", PickupAccount: "5351244"},
			wantErr: ErrDHLConfigMissingClientSecret,
		},
		{
			name:    "missing pickup account",
			config:  &DHLConfig{ClientID: "id", ClientSecret: "secret"},
			wantErr: ErrDHLConfigMissingPickupAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, DHLProductionAPIURL, tt.config.APIBaseURL)
			}
		})
	}
}

func TestDHLServiceName(t *testing.T) {
	assert.Equal(t, "DHL Parcel Ground", dhlServiceName("GND", ""))
	assert.Equal(t, "DHL Parcel Expedited", dhlServiceName("EXP", ""))
	assert.Equal(t, "Carrier Name", dhlServiceName("GND", "Carrier Name"))
	assert.Equal(t, "DHL XYZ", dhlServiceName("XYZ", ""))
}

func TestDHLLocation(t *testing.T) {
	city, state := dhlLocation("AUSTIN, TX")
	assert.Equal(t, "AUSTIN", city)
	assert.Equal(t, "TX", state)

	city, state = dhlLocation("AUSTIN")
	assert.Equal(t, "AUSTIN", city)
	assert.Equal(t, "", state)
}

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

type dhlTestServer struct {
	server     *httptest.Server
	tokenCount int64
	handle     func(w http.ResponseWriter, r *http.Request)
}

func newDHLTestServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) *dhlTestServer {
	t.Helper()

	dts := &dhlTestServer{handle: handle}
	dts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v4/accesstoken" {
			atomic.AddInt64(&dts.tokenCount, 1)

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "test_client", user)
			assert.Equal(t, "test_secret", pass)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(DHLTokenResponse{
				AccessToken: "test_token",
				TokenType:   "Bearer",
				ExpiresIn:   86400,
			})
			return
		}

		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
		dts.handle(w, r)
	}))
	t.Cleanup(dts.server.Close)
	return dts
}

func newTestDHLAdapter(t *testing.T, server *dhlTestServer) *DHLAdapter {
	t.Helper()

	adapter, err := NewDHLAdapter(&DHLConfig{
		ClientID:           "test_client",
		ClientSecret:       "test_secret",
		PickupAccount:      "5351244",
		DistributionCenter: "USDFW1",
		APIBaseURL:         server.server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func dhlRateRequest() *shipping.RateRequest {
	return &shipping.RateRequest{
		Carrier: shipping.CarrierDHL,
		Origin: &shipping.Address{
			Name: "Warehouse", AddressLine1: "100 Main St",
			City: "Dallas", State: "TX", PostalCode: "75201", Country: "US",
		},
		Destination: shipping.Address{
			Name: "Jane Receiver", AddressLine1: "200 Oak Ave",
			City: "Austin", State: "TX", PostalCode: "73301", Country: "US",
		},
		Packages: []shipping.Package{{Weight: decimal.NewFromFloat(1.5)}},
	}
}

func dhlCreateRequest() *shipping.CreateShipmentRequest {
	return &shipping.CreateShipmentRequest{
		OrderID:     "order-42",
		Carrier:     shipping.CarrierDHL,
		ServiceCode: "GND",
		Origin: &shipping.Address{
			Name: "Warehouse", AddressLine1: "100 Main St",
			City: "Dallas", State: "TX", PostalCode: "75201", Country: "US",
		},
		Destination: shipping.Address{
			Name: "Jane Receiver", AddressLine1: "200 Oak Ave",
			City: "Austin", State: "TX", PostalCode: "73301", Country: "US",
		},
		Packages:    []shipping.Package{{Weight: decimal.NewFromFloat(1.5)}},
		LabelFormat: shipping.LabelFormatZPL,
		LabelSize:   shipping.LabelSize4x6,
	}
}

// ---------------------------------------------------------------------------
// Rate Tests
// ---------------------------------------------------------------------------

func TestDHLAdapter_GetRates(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates/v4/quote", r.URL.Path)

		var req DHLRateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "5351244", req.Pickup)
		assert.Equal(t, "USDFW1", req.DistributionCenter)
		assert.Equal(t, "LB", req.PackageDetail.Weight.UnitOfMeasure)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DHLRateResponse{
			Products: []DHLRateProduct{
				{
					OrderedProductID: "GND",
					Rate:             &DHLRate{Amount: 6.49, Currency: "USD"},
					EstimatedDays:    5,
				},
				{
					OrderedProductID: "EXP",
					Rate:             &DHLRate{Amount: 9.15, Currency: "USD"},
				},
				// Products without a rate are skipped
				{OrderedProductID: "MAX"},
			},
		})
	})
	adapter := newTestDHLAdapter(t, dts)

	rates, err := adapter.GetRates(context.Background(), dhlRateRequest())
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.Equal(t, shipping.CarrierDHL, rates[0].Carrier)
	assert.Equal(t, "DHL Parcel Ground", rates[0].ServiceName)
	assert.True(t, rates[0].Rate.Equal(decimal.NewFromFloat(6.49)))
	require.NotNil(t, rates[0].DeliveryDays)
	assert.Equal(t, 5, *rates[0].DeliveryDays)
}

func TestDHLAdapter_GetRates_MissingOrigin(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the carrier")
	})
	adapter := newTestDHLAdapter(t, dts)

	req := dhlRateRequest()
	req.Origin = nil
	_, err := adapter.GetRates(context.Background(), req)
	assert.ErrorIs(t, err, shipping.ErrCarrierRequestFailed)
}

// ---------------------------------------------------------------------------
// Shipment Tests
// ---------------------------------------------------------------------------

func TestDHLAdapter_CreateShipment(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shipping/v4/label", r.URL.Path)
		assert.Equal(t, "ZPL", r.URL.Query().Get("format"))

		var req DHLLabelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GND", req.OrderedProductID)
		assert.Equal(t, "73301", req.ConsigneeAddress.PostalCode)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DHLLabelResponse{
			Labels: []DHLLabel{
				{
					TrackingID:   "420733019361269903500000000000",
					DHLPackageID: "GM60511234500000001",
					LabelData:    "XlhBCl5GTw==",
					Format:       "ZPL",
				},
			},
		})
	})
	adapter := newTestDHLAdapter(t, dts)

	shipment, err := adapter.CreateShipment(context.Background(), dhlCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "420733019361269903500000000000", shipment.TrackingNumber)
	assert.Equal(t, "XlhBCl5GTw==", shipment.LabelData)
	assert.Equal(t, "GM60511234500000001", shipment.CarrierShipmentID)
	assert.Equal(t, "DHL Parcel Ground", shipment.ServiceName)
	assert.Equal(t, shipping.StatusLabelCreated, shipment.Status)
}

func TestDHLAdapter_CreateShipment_EmptyLabels(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DHLLabelResponse{})
	})
	adapter := newTestDHLAdapter(t, dts)

	_, err := adapter.CreateShipment(context.Background(), dhlCreateRequest())
	assert.ErrorIs(t, err, shipping.ErrCarrierInvalidResponse)
}

func TestDHLAdapter_CreateShipment_APIError(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(DHLAPIError{
			Title:  "Validation error",
			Detail: "consigneeAddress.postalCode is invalid",
		})
	})
	adapter := newTestDHLAdapter(t, dts)

	_, err := adapter.CreateShipment(context.Background(), dhlCreateRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrCarrierRequestFailed)
	assert.Contains(t, err.Error(), "postalCode is invalid")
}

// ---------------------------------------------------------------------------
// Tracking Tests
// ---------------------------------------------------------------------------

func TestDHLAdapter_TrackShipment(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tracking/v4/package", r.URL.Path)
		assert.Equal(t, "420733019361269903500000000000", r.URL.Query().Get("trackingId"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DHLTrackResponse{
			Packages: []DHLTrackPackage{
				{
					Package:            DHLTrackPackageID{TrackingID: "420733019361269903500000000000"},
					ActualDeliveryDate: "2026-08-28",
					Events: []DHLTrackEvent{
						{
							Date:                    "2026-08-28",
							Time:                    "14:05:00",
							PrimaryEventDescription: "DELIVERED",
							Location:                "AUSTIN, TX",
							PostalCode:              "73301",
							Country:                 "US",
						},
						{
							Date:                    "2026-08-27",
							Time:                    "06:10:00",
							PrimaryEventDescription: "ARRIVAL AT POST OFFICE",
							Location:                "AUSTIN, TX",
						},
					},
				},
			},
		})
	})
	adapter := newTestDHLAdapter(t, dts)

	info, err := adapter.TrackShipment(context.Background(), &shipping.TrackingRequest{
		Carrier:        shipping.CarrierDHL,
		TrackingNumber: "420733019361269903500000000000",
	})
	require.NoError(t, err)

	assert.Equal(t, shipping.StatusDelivered, info.Status)
	require.Len(t, info.Events, 2)
	assert.Equal(t, "AUSTIN", info.Events[0].City)
	assert.Equal(t, "TX", info.Events[0].State)
	assert.Equal(t, 14, info.Events[0].Timestamp.Hour())
	require.NotNil(t, info.ActualDelivery)
}

func TestDHLAdapter_TokenReusedAcrossCalls(t *testing.T) {
	dts := newDHLTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DHLRateResponse{})
	})
	adapter := newTestDHLAdapter(t, dts)

	_, err := adapter.GetRates(context.Background(), dhlRateRequest())
	require.NoError(t, err)
	_, err = adapter.GetRates(context.Background(), dhlRateRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&dts.tokenCount))
}
