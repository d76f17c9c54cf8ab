package carrier

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestCanadaPostConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *CanadaPostConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &CanadaPostConfig{Username: "user", Password: "pass", CustomerNumber: "2004381"},
			wantErr: nil,
		},
		{
			name:    "missing username",
			config:  &CanadaPostConfig{Password: "pass", CustomerNumber: "2004381"},
			wantErr: ErrCanadaPostConfigMissingUsername,
		},
		{
			name:    "missing password",
			config:  &CanadaPostConfig{Username: "user", CustomerNumber: "2004381"},
			wantErr: ErrCanadaPostConfigMissingPassword,
		},
		{
			name:    "missing customer number",
			config:  &CanadaPostConfig{Username: "user", Password: "pass"},
			wantErr: ErrCanadaPostConfigMissingCustomerNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, CanadaPostProductionAPIURL, tt.config.APIBaseURL)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Conversion Tests
// ---------------------------------------------------------------------------

func TestPoundsToKilograms(t *testing.T) {
	tests := []struct {
		pounds string
		kg     string
	}{
		{"1", "0.454"},
		{"2.5", "1.134"},
		{"10", "4.536"},
		{"0.5", "0.227"},
	}

	for _, tt := range tests {
		t.Run(tt.pounds, func(t *testing.T) {
			got := poundsToKilograms(decimal.RequireFromString(tt.pounds))
			assert.Equal(t, tt.kg, got.String())
		})
	}
}

func TestInchesToCentimetres(t *testing.T) {
	got := inchesToCentimetres(decimal.NewFromInt(12))
	assert.Equal(t, "30.5", got.String())
}

func TestCPPostalCode(t *testing.T) {
	assert.Equal(t, "K1A0B1", cpPostalCode("k1a 0b1"))
	assert.Equal(t, "90210", cpPostalCode("90210"))
}

func TestCPDestination(t *testing.T) {
	ca := cpDestination(&shipping.Address{PostalCode: "K1A 0B1", Country: "CA"})
	require.NotNil(t, ca.Domestic)
	assert.Equal(t, "K1A0B1", ca.Domestic.PostalCode)

	us := cpDestination(&shipping.Address{PostalCode: "73301", Country: "US"})
	require.NotNil(t, us.UnitedStates)
	assert.Equal(t, "73301", us.UnitedStates.ZipCode)

	intl := cpDestination(&shipping.Address{PostalCode: "SW1A 1AA", Country: "GB"})
	require.NotNil(t, intl.International)
	assert.Equal(t, "GB", intl.International.CountryCode)
}

func TestCPServiceName(t *testing.T) {
	assert.Equal(t, "Canada Post Xpresspost", cpServiceName("DOM.XP"))
	assert.Equal(t, "Canada Post DOM.ZZ", cpServiceName("DOM.ZZ"))
}

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestCanadaPostAdapter(t *testing.T, server *httptest.Server) *CanadaPostAdapter {
	t.Helper()

	adapter, err := NewCanadaPostAdapter(&CanadaPostConfig{
		Username:       "test_user",
		Password:       "test_pass",
		CustomerNumber: "2004381",
		APIBaseURL:     server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func cpRateRequest() *shipping.RateRequest {
	return &shipping.RateRequest{
		Carrier: shipping.CarrierCanadaPost,
		Origin: &shipping.Address{
			Name: "Warehouse", AddressLine1: "100 Main St",
			City: "Ottawa", State: "ON", PostalCode: "K1A 0B1", Country: "CA",
		},
		Destination: shipping.Address{
			Name: "Jane Receiver", AddressLine1: "200 Oak Ave",
			City: "Toronto", State: "ON", PostalCode: "M5V 3L9", Country: "CA",
		},
		Packages: []shipping.Package{{Weight: decimal.NewFromFloat(2.5)}},
	}
}

func cpCreateRequest() *shipping.CreateShipmentRequest {
	return &shipping.CreateShipmentRequest{
		OrderID:     "order-42",
		Carrier:     shipping.CarrierCanadaPost,
		ServiceCode: "DOM.XP",
		Origin: &shipping.Address{
			Name: "Warehouse", Company: "Storefront Inc",
			AddressLine1: "100 Main St",
			City:         "Ottawa", State: "ON", PostalCode: "K1A 0B1", Country: "CA",
		},
		Destination: shipping.Address{
			Name: "Jane Receiver", AddressLine1: "200 Oak Ave",
			City: "Toronto", State: "ON", PostalCode: "M5V 3L9", Country: "CA",
		},
		Packages:    []shipping.Package{{Weight: decimal.NewFromFloat(2.5)}},
		LabelFormat: shipping.LabelFormatPDF,
		LabelSize:   shipping.LabelSize4x6,
	}
}

func requireBasicAuth(t *testing.T, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "test_user", user)
	assert.Equal(t, "test_pass", pass)
}

// ---------------------------------------------------------------------------
// Rate Tests
// ---------------------------------------------------------------------------

func TestCanadaPostAdapter_GetRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, "/rs/ship/price", r.URL.Path)
		assert.Equal(t, cpRateMediaType, r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		payload := string(body)
		assert.Contains(t, payload, "<customer-number>2004381</customer-number>")
		// 2.5 lb converts to kilograms on the wire
		assert.Contains(t, payload, "<weight>1.134</weight>")
		assert.Contains(t, payload, "<domestic>")

		w.Header().Set("Content-Type", cpRateMediaType)
		xml.NewEncoder(w).Encode(CPPriceQuotes{
			Quotes: []CPPriceQuote{
				{
					ServiceCode:  "DOM.RP",
					ServiceName:  "Regular Parcel",
					PriceDetails: CPPriceDetails{Due: "12.29"},
					ServiceStandard: &CPServiceStandard{
						ExpectedDeliveryDate: "2026-09-03",
					},
				},
				{
					ServiceCode:  "DOM.XP",
					ServiceName:  "Xpresspost",
					PriceDetails: CPPriceDetails{Due: "18.94"},
				},
			},
		})
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	rates, err := adapter.GetRates(context.Background(), cpRateRequest())
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.Equal(t, shipping.CarrierCanadaPost, rates[0].Carrier)
	assert.Equal(t, "Regular Parcel", rates[0].ServiceName)
	assert.Equal(t, "DOM.RP", rates[0].ServiceCode)
	assert.True(t, rates[0].Rate.Equal(decimal.NewFromFloat(12.29)))
	assert.Equal(t, "CAD", rates[0].Currency)
	require.NotNil(t, rates[0].DeliveryDate)
	assert.Equal(t, "2026-09-03", *rates[0].DeliveryDate)
}

func TestCanadaPostAdapter_GetRates_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", cpRateMediaType)
		w.WriteHeader(http.StatusBadRequest)
		xml.NewEncoder(w).Encode(CPMessages{
			Messages: []CPMessage{
				{Code: "9111", Description: "You cannot mail on behalf of the requested customer."},
			},
		})
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	_, err := adapter.GetRates(context.Background(), cpRateRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrCarrierRequestFailed)
	assert.Contains(t, err.Error(), "on behalf of")
}

func TestCanadaPostAdapter_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	_, err := adapter.GetRates(context.Background(), cpRateRequest())
	assert.ErrorIs(t, err, shipping.ErrCarrierAuthFailed)
}

// ---------------------------------------------------------------------------
// Shipment Tests
// ---------------------------------------------------------------------------

func TestCanadaPostAdapter_CreateShipment(t *testing.T) {
	labelBytes := []byte("%PDF-1.4 fake label")

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)

		switch {
		case r.URL.Path == "/rs/2004381/ncshipment":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			payload := string(body)
			assert.Contains(t, payload, "<service-code>DOM.XP</service-code>")
			assert.Contains(t, payload, "<company>Storefront Inc</company>")

			w.Header().Set("Content-Type", cpShipMediaType)
			xml.NewEncoder(w).Encode(CPShipmentInfo{
				ShipmentID:  "406951321983787352",
				TrackingPin: "12345678901234",
				Links: CPLinks{
					Links: []CPLink{
						{Rel: "self", Href: server.URL + "/rs/2004381/ncshipment/406951321983787352"},
						{Rel: "label", Href: server.URL + "/label/406951321983787352", MediaType: "application/pdf"},
					},
				},
			})

		case strings.HasPrefix(r.URL.Path, "/label/"):
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(labelBytes)

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	shipment, err := adapter.CreateShipment(context.Background(), cpCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "12345678901234", shipment.TrackingNumber)
	assert.Equal(t, base64.StdEncoding.EncodeToString(labelBytes), shipment.LabelData)
	assert.Equal(t, "406951321983787352", shipment.CarrierShipmentID)
	assert.Equal(t, "Canada Post Xpresspost", shipment.ServiceName)
	assert.Equal(t, "CAD", shipment.Currency)
	assert.Equal(t, shipping.StatusLabelCreated, shipment.Status)
}

func TestCanadaPostAdapter_CreateShipment_MissingLabelLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", cpShipMediaType)
		xml.NewEncoder(w).Encode(CPShipmentInfo{
			ShipmentID:  "406951321983787352",
			TrackingPin: "12345678901234",
		})
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	_, err := adapter.CreateShipment(context.Background(), cpCreateRequest())
	assert.ErrorIs(t, err, shipping.ErrCarrierInvalidResponse)
}

// ---------------------------------------------------------------------------
// Tracking Tests
// ---------------------------------------------------------------------------

func TestCanadaPostAdapter_TrackShipment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBasicAuth(t, r)
		assert.Equal(t, "/vis/track/pin/12345678901234/detail", r.URL.Path)
		assert.Equal(t, cpTrackMediaType, r.Header.Get("Accept"))

		w.Header().Set("Content-Type", cpTrackMediaType)
		xml.NewEncoder(w).Encode(CPTrackingDetail{
			ExpectedDeliveryDate: "2026-08-28",
			ActualDeliveryDate:   "2026-08-28",
			Events: []CPTrackingEvent{
				{
					EventIdentifier:  "1496",
					EventDate:        "2026-08-28",
					EventTime:        "14:05:00",
					EventDescription: "Item successfully delivered",
					EventSite:        "TORONTO",
					EventProvince:    "ON",
				},
				{
					EventIdentifier:  "0174",
					EventDate:        "2026-08-28",
					EventTime:        "08:27:00",
					EventDescription: "Item out for delivery",
					EventSite:        "TORONTO",
					EventProvince:    "ON",
				},
			},
		})
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	info, err := adapter.TrackShipment(context.Background(), &shipping.TrackingRequest{
		Carrier:        shipping.CarrierCanadaPost,
		TrackingNumber: "12345678901234",
	})
	require.NoError(t, err)

	assert.Equal(t, shipping.StatusDelivered, info.Status)
	require.Len(t, info.Events, 2)
	assert.Equal(t, "TORONTO", info.Events[0].City)
	assert.Equal(t, "ON", info.Events[0].State)
	assert.Equal(t, 14, info.Events[0].Timestamp.Hour())
	require.NotNil(t, info.ActualDelivery)
	require.NotNil(t, info.EstimatedDelivery)
}

func TestCanadaPostAdapter_TrackShipment_NoEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", cpTrackMediaType)
		xml.NewEncoder(w).Encode(CPTrackingDetail{})
	}))
	defer server.Close()
	adapter := newTestCanadaPostAdapter(t, server)

	info, err := adapter.TrackShipment(context.Background(), &shipping.TrackingRequest{
		Carrier:        shipping.CarrierCanadaPost,
		TrackingNumber: "12345678901234",
	})
	require.NoError(t, err)
	assert.Equal(t, shipping.StatusInTransit, info.Status)
	assert.Empty(t, info.Events)
}
