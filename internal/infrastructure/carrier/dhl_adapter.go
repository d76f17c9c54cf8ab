package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shipping"
)

// DHLAdapter implements shipping.CarrierAdapter for the DHL eCommerce REST
// API. The access token grant uses Basic auth; business calls are
// Bearer-authenticated JSON.
type DHLAdapter struct {
	config     *DHLConfig
	httpClient *http.Client
	tokens     *tokenCache
}

var _ shipping.CarrierAdapter = (*DHLAdapter)(nil)

// NewDHLAdapter creates a new DHL adapter with the given configuration
func NewDHLAdapter(config *DHLConfig) (*DHLAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &DHLAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}
	a.tokens = newTokenCache(a.fetchToken)
	return a, nil
}

// Carrier returns the carrier code this adapter handles
func (a *DHLAdapter) Carrier() shipping.CarrierCode {
	return shipping.CarrierDHL
}

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

func (a *DHLAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL+"/auth/v4/accesstoken", nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: building token request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", 0, fmt.Errorf("%w: reading token response: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", 0, fmt.Errorf("%w: dhl rejected client credentials (HTTP %d)", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("%w: token endpoint returned HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}

	var tokenResp DHLTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("%w: parsing token response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response missing access_token", shipping.ErrCarrierInvalidResponse)
	}

	return tokenResp.AccessToken, time.Duration(tokenResp.ExpiresIn) * time.Second, nil
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// GetRates requests product quotes via POST /rates/v4/quote. DHL rates one
// parcel per call; multi-package requests are quoted on the first parcel.
func (a *DHLAdapter) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: dhl rating requires an origin address", shipping.ErrCarrierRequestFailed)
	}
	if len(req.Packages) == 0 {
		return nil, fmt.Errorf("%w: dhl rating requires a package", shipping.ErrCarrierRequestFailed)
	}

	dhlReq := &DHLRateRequest{
		Pickup:             a.config.PickupAccount,
		DistributionCenter: a.config.DistributionCenter,
		OrderedProductID:   req.ServiceCode,
		ReturnAddress:      dhlAddress(req.Origin),
		ConsigneeAddress:   dhlAddress(&req.Destination),
		PackageDetail:      dhlPackageDetail(&req.Packages[0], ""),
	}

	var dhlResp DHLRateResponse
	if err := a.doRequest(ctx, http.MethodPost, "/rates/v4/quote", dhlReq, &dhlResp); err != nil {
		return nil, err
	}

	rates := make([]shipping.ShippingRate, 0, len(dhlResp.Products))
	for _, product := range dhlResp.Products {
		if product.Rate == nil {
			continue
		}

		currency := product.Rate.Currency
		if currency == "" {
			currency = "USD"
		}

		rate := shipping.ShippingRate{
			Carrier:     shipping.CarrierDHL,
			ServiceName: dhlServiceName(product.OrderedProductID, product.ProductName),
			ServiceCode: product.OrderedProductID,
			Rate:        decimal.NewFromFloat(product.Rate.Amount),
			Currency:    currency,
		}
		if product.EstimatedDays > 0 {
			days := product.EstimatedDays
			rate.DeliveryDays = &days
		}
		rates = append(rates, rate)
	}

	return rates, nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CreateShipment purchases a label via POST /shipping/v4/label. The label
// format travels as a query parameter.
func (a *DHLAdapter) CreateShipment(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: dhl shipment requires an origin address", shipping.ErrCarrierRequestFailed)
	}
	if len(req.Packages) == 0 {
		return nil, fmt.Errorf("%w: dhl shipment requires a package", shipping.ErrCarrierRequestFailed)
	}

	dhlReq := &DHLLabelRequest{
		Pickup:             a.config.PickupAccount,
		DistributionCenter: a.config.DistributionCenter,
		OrderedProductID:   req.ServiceCode,
		ReturnAddress:      dhlAddress(req.Origin),
		ConsigneeAddress:   dhlAddress(&req.Destination),
		PackageDetail:      dhlPackageDetail(&req.Packages[0], req.ReferenceNumber),
	}

	path := "/shipping/v4/label?format=" + url.QueryEscape(dhlLabelFormat(req.LabelFormat))

	var dhlResp DHLLabelResponse
	if err := a.doRequest(ctx, http.MethodPost, path, dhlReq, &dhlResp); err != nil {
		return nil, err
	}

	if len(dhlResp.Labels) == 0 {
		return nil, fmt.Errorf("%w: label response contains no labels", shipping.ErrCarrierInvalidResponse)
	}
	label := dhlResp.Labels[0]
	if label.TrackingID == "" || label.LabelData == "" {
		return nil, fmt.Errorf("%w: label response missing tracking id or label", shipping.ErrCarrierInvalidResponse)
	}

	now := time.Now().UTC()
	return &shipping.Shipment{
		ID:                uuid.New(),
		OrderID:           req.OrderID,
		Carrier:           shipping.CarrierDHL,
		ServiceCode:       req.ServiceCode,
		ServiceName:       dhlServiceName(req.ServiceCode, ""),
		TrackingNumber:    label.TrackingID,
		LabelData:         label.LabelData,
		LabelFormat:       req.LabelFormat,
		LabelSize:         req.LabelSize,
		Currency:          "USD",
		Origin:            *req.Origin,
		Destination:       req.Destination,
		Status:            shipping.StatusLabelCreated,
		ReferenceNumber:   req.ReferenceNumber,
		CarrierShipmentID: label.DHLPackageID,
		IsReturnLabel:     req.IsReturnLabel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackShipment polls tracking via GET /tracking/v4/package
func (a *DHLAdapter) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	path := "/tracking/v4/package?trackingId=" + url.QueryEscape(req.TrackingNumber)

	var dhlResp DHLTrackResponse
	if err := a.doRequest(ctx, http.MethodGet, path, nil, &dhlResp); err != nil {
		return nil, err
	}

	if len(dhlResp.Packages) == 0 {
		return nil, fmt.Errorf("%w: track response contains no packages", shipping.ErrCarrierInvalidResponse)
	}
	pkg := dhlResp.Packages[0]

	info := &shipping.TrackingInfo{
		TrackingNumber: req.TrackingNumber,
		Carrier:        shipping.CarrierDHL,
		Status:         shipping.StatusInTransit,
	}

	// The newest event drives the canonical status
	if len(pkg.Events) > 0 {
		info.Status = shipping.MapTrackingStatus(pkg.Events[0].PrimaryEventDescription)
	}

	for _, ev := range pkg.Events {
		event := shipping.TrackingEvent{
			Timestamp:   dhlTimestamp(ev.Date, ev.Time),
			Status:      ev.PrimaryEventDescription,
			Description: ev.PrimaryEventDescription,
			PostalCode:  ev.PostalCode,
			Country:     ev.Country,
		}
		event.City, event.State = dhlLocation(ev.Location)
		info.Events = append(info.Events, event)
	}

	if pkg.EstimatedDeliveryDate != "" {
		if ts, err := time.Parse("2006-01-02", pkg.EstimatedDeliveryDate); err == nil {
			info.EstimatedDelivery = &ts
		}
	}
	if pkg.ActualDeliveryDate != "" {
		if ts, err := time.Parse("2006-01-02", pkg.ActualDeliveryDate); err == nil {
			info.ActualDelivery = &ts
		}
	}

	return info, nil
}

// dhlTimestamp combines DHL's split date and time event fields
func dhlTimestamp(date, clock string) time.Time {
	if clock != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock); err == nil {
			return ts
		}
	}
	ts, _ := time.Parse("2006-01-02", date)
	return ts
}

// dhlLocation splits a "CITY, ST" location string
func dhlLocation(location string) (city, state string) {
	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}
	return city, state
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

func (a *DHLAdapter) doRequest(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%w: marshaling request: %v", shipping.ErrCarrierRequestFailed, err)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		a.tokens.Invalidate()
		return fmt.Errorf("%w: dhl rejected access token", shipping.ErrCarrierAuthFailed)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", shipping.ErrCarrierRequestFailed,
			resp.StatusCode, dhlErrorSummary(body))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("%w: parsing response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	return nil
}

func dhlErrorSummary(body []byte) string {
	var apiErr DHLAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Title != "" {
			return apiErr.Title
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func dhlAddress(addr *shipping.Address) DHLAddress {
	return DHLAddress{
		Name:        addr.Name,
		CompanyName: addr.Company,
		Address1:    addr.AddressLine1,
		Address2:    addr.AddressLine2,
		City:        addr.City,
		State:       addr.State,
		PostalCode:  addr.PostalCode,
		Country:     isoCountryCode(addr.Country),
		Phone:       addr.Phone,
	}
}

func dhlPackageDetail(pkg *shipping.Package, reference string) DHLPackageDetail {
	detail := DHLPackageDetail{
		PackageDescription: pkg.Description,
		Weight: DHLWeight{
			Value:         pkg.Weight.InexactFloat64(),
			UnitOfMeasure: "LB",
		},
		BillingReference1: reference,
	}
	if pkg.HasDimensions() {
		detail.Dimension = &DHLDimension{
			Length:        pkg.Length.InexactFloat64(),
			Width:         pkg.Width.InexactFloat64(),
			Height:        pkg.Height.InexactFloat64(),
			UnitOfMeasure: "IN",
		}
	}
	return detail
}

// dhlLabelFormat maps the canonical label format to a DHL label format.
// DHL eCommerce issues ZPL or PNG; PDF falls back to PNG.
func dhlLabelFormat(format shipping.LabelFormat) string {
	if format == shipping.LabelFormatZPL {
		return "ZPL"
	}
	return "PNG"
}

// dhlServiceNames maps DHL eCommerce ordered product IDs to display names
var dhlServiceNames = map[string]string{
	"GND": "DHL Parcel Ground",
	"EXP": "DHL Parcel Expedited",
	"MAX": "DHL Parcel Expedited Max",
	"PLT": "DHL Parcel International Direct",
	"PLY": "DHL Parcel International Standard",
}

// dhlServiceName resolves a display name, preferring the carrier-reported
// name, then the static map, then a generic "DHL <code>" fallback.
func dhlServiceName(productID, reported string) string {
	if reported != "" {
		return reported
	}
	if name, ok := dhlServiceNames[productID]; ok {
		return name
	}
	return "DHL " + productID
}
