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

// FedExAdapter implements shipping.CarrierAdapter for the FedEx REST API.
// Every business call is a Bearer-authenticated JSON POST; the access token
// comes from a shared tokenCache wired to the OAuth endpoint.
type FedExAdapter struct {
	config     *FedExConfig
	httpClient *http.Client
	tokens     *tokenCache
}

var _ shipping.CarrierAdapter = (*FedExAdapter)(nil)

// NewFedExAdapter creates a new FedEx adapter with the given configuration
func NewFedExAdapter(config *FedExConfig) (*FedExAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &FedExAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}
	a.tokens = newTokenCache(a.fetchToken)
	return a, nil
}

// Carrier returns the carrier code this adapter handles
func (a *FedExAdapter) Carrier() shipping.CarrierCode {
	return shipping.CarrierFedEx
}

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// fetchToken performs the client-credentials grant against /oauth/token.
// FedEx takes the grant as a form post, not JSON.
func (a *FedExAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.config.ClientID)
	form.Set("client_secret", a.config.ClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: building token request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		return "", 0, fmt.Errorf("%w: fedex rejected client credentials (HTTP %d)", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("%w: token endpoint returned HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}

	var tokenResp FedExTokenResponse
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

// GetRates requests rate quotes via POST /rate/v1/rates/quotes
func (a *FedExAdapter) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: fedex rating requires an origin address", shipping.ErrCarrierRequestFailed)
	}

	fedexReq := &FedExRateRequest{
		AccountNumber: FedExAccountNumber{Value: a.config.AccountNumber},
		RequestedShipment: FedExRequestedShipment{
			Shipper:                   FedExParty{Address: fedexAddress(req.Origin)},
			Recipient:                 FedExParty{Address: fedexAddress(&req.Destination)},
			ServiceType:               req.ServiceCode,
			PickupType:                "DROPOFF_AT_FEDEX_LOCATION",
			RateRequestType:           []string{"ACCOUNT", "LIST"},
			RequestedPackageLineItems: fedexPackages(req.Packages),
		},
	}

	var fedexResp FedExRateResponse
	if err := a.doRequest(ctx, "/rate/v1/rates/quotes", fedexReq, &fedexResp); err != nil {
		return nil, err
	}
	if !fedexResp.IsSuccess() {
		return nil, fedexResponseError(fedexResp.Errors)
	}

	rates := make([]shipping.ShippingRate, 0, len(fedexResp.Output.RateReplyDetails))
	for _, detail := range fedexResp.Output.RateReplyDetails {
		rated, ok := pickFedExRating(detail.RatedShipmentDetails)
		if !ok {
			continue
		}

		currency := rated.Currency
		if currency == "" {
			currency = "USD"
		}

		rate := shipping.ShippingRate{
			Carrier:     shipping.CarrierFedEx,
			ServiceName: fedexServiceName(detail.ServiceType, detail.ServiceName),
			ServiceCode: detail.ServiceType,
			Rate:        decimal.NewFromFloat(rated.TotalNetCharge),
			Currency:    currency,
		}
		if retail, ok := pickFedExListRating(detail.RatedShipmentDetails); ok && retail.TotalNetCharge != rated.TotalNetCharge {
			retailRate := decimal.NewFromFloat(retail.TotalNetCharge)
			rate.RetailRate = &retailRate
		}
		if detail.Commit != nil && detail.Commit.DateDetail != nil && detail.Commit.DateDetail.DayFormat != "" {
			deliveryDate := detail.Commit.DateDetail.DayFormat
			rate.DeliveryDate = &deliveryDate
		}
		rates = append(rates, rate)
	}

	return rates, nil
}

// pickFedExRating prefers the negotiated ACCOUNT rating, falling back to the
// first rating when no account rating is present.
func pickFedExRating(details []FedExRatedShipmentDetail) (FedExRatedShipmentDetail, bool) {
	if len(details) == 0 {
		return FedExRatedShipmentDetail{}, false
	}
	for _, d := range details {
		if strings.HasPrefix(d.RateType, "ACCOUNT") {
			return d, true
		}
	}
	return details[0], true
}

func pickFedExListRating(details []FedExRatedShipmentDetail) (FedExRatedShipmentDetail, bool) {
	for _, d := range details {
		if strings.HasPrefix(d.RateType, "LIST") {
			return d, true
		}
	}
	return FedExRatedShipmentDetail{}, false
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CreateShipment purchases a label via POST /ship/v1/shipments
func (a *FedExAdapter) CreateShipment(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: fedex shipment requires an origin address", shipping.ErrCarrierRequestFailed)
	}

	fedexReq := &FedExShipRequest{
		LabelResponseOptions: "LABEL",
		AccountNumber:        FedExAccountNumber{Value: a.config.AccountNumber},
		RequestedShipment: FedExShipRequestedShipment{
			Shipper:       fedexShipParty(req.Origin),
			Recipients:    []FedExParty{fedexShipParty(&req.Destination)},
			ServiceType:   req.ServiceCode,
			PackagingType: "YOUR_PACKAGING",
			PickupType:    "DROPOFF_AT_FEDEX_LOCATION",
			ShippingChargesPayment: FedExPayment{
				PaymentType: "SENDER",
			},
			LabelSpecification: FedExLabelSpecification{
				ImageType:      string(req.LabelFormat),
				LabelStockType: fedexLabelStock(req.LabelFormat, req.LabelSize),
			},
			RequestedPackageLineItems: fedexPackages(req.Packages),
		},
	}

	var fedexResp FedExShipResponse
	if err := a.doRequest(ctx, "/ship/v1/shipments", fedexReq, &fedexResp); err != nil {
		return nil, err
	}
	if !fedexResp.IsSuccess() {
		return nil, fedexResponseError(fedexResp.Errors)
	}
	if len(fedexResp.Output.TransactionShipments) == 0 {
		return nil, fmt.Errorf("%w: ship response contains no shipments", shipping.ErrCarrierInvalidResponse)
	}

	shipment := fedexResp.Output.TransactionShipments[0]
	if shipment.MasterTrackingNumber == "" {
		return nil, fmt.Errorf("%w: ship response missing tracking number", shipping.ErrCarrierInvalidResponse)
	}

	labelData := ""
	rate := decimal.Zero
	currency := "USD"
	for _, piece := range shipment.PieceResponses {
		if piece.NetRateAmount > 0 {
			rate = rate.Add(decimal.NewFromFloat(piece.NetRateAmount))
		}
		if piece.Currency != "" {
			currency = piece.Currency
		}
		if labelData == "" {
			for _, doc := range piece.PackageDocuments {
				if doc.EncodedLabel != "" {
					labelData = doc.EncodedLabel
					break
				}
			}
		}
	}
	if labelData == "" {
		return nil, fmt.Errorf("%w: ship response missing label", shipping.ErrCarrierInvalidResponse)
	}

	now := time.Now().UTC()
	return &shipping.Shipment{
		ID:              uuid.New(),
		OrderID:         req.OrderID,
		Carrier:         shipping.CarrierFedEx,
		ServiceCode:     req.ServiceCode,
		ServiceName:     fedexServiceName(req.ServiceCode, shipment.ServiceName),
		TrackingNumber:  shipment.MasterTrackingNumber,
		LabelData:       labelData,
		LabelFormat:     req.LabelFormat,
		LabelSize:       req.LabelSize,
		Rate:            rate,
		Currency:        currency,
		Origin:          *req.Origin,
		Destination:     req.Destination,
		Status:          shipping.StatusLabelCreated,
		ReferenceNumber: req.ReferenceNumber,
		IsReturnLabel:   req.IsReturnLabel,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackShipment polls tracking via POST /track/v1/trackingnumbers
func (a *FedExAdapter) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	fedexReq := &FedExTrackRequest{
		IncludeDetailedScans: true,
		TrackingInfo: []FedExTrackingInfo{
			{TrackingNumberInfo: FedExTrackingNumberInfo{TrackingNumber: req.TrackingNumber}},
		},
	}

	var fedexResp FedExTrackResponse
	if err := a.doRequest(ctx, "/track/v1/trackingnumbers", fedexReq, &fedexResp); err != nil {
		return nil, err
	}
	if !fedexResp.IsSuccess() {
		return nil, fedexResponseError(fedexResp.Errors)
	}
	if len(fedexResp.Output.CompleteTrackResults) == 0 ||
		len(fedexResp.Output.CompleteTrackResults[0].TrackResults) == 0 {
		return nil, fmt.Errorf("%w: track response contains no results", shipping.ErrCarrierInvalidResponse)
	}

	result := fedexResp.Output.CompleteTrackResults[0].TrackResults[0]
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", shipping.ErrCarrierRequestFailed, result.Error.Message, result.Error.Code)
	}

	info := &shipping.TrackingInfo{
		TrackingNumber: req.TrackingNumber,
		Carrier:        shipping.CarrierFedEx,
		Status:         shipping.StatusInTransit,
	}
	if result.LatestStatusDetail != nil {
		info.Status = shipping.MapTrackingStatus(result.LatestStatusDetail.Description)
	}

	for _, scan := range result.ScanEvents {
		event := shipping.TrackingEvent{
			Status:      scan.DerivedStatus,
			Description: scan.EventDescription,
		}
		if event.Status == "" {
			event.Status = scan.EventDescription
		}
		if ts, err := time.Parse(time.RFC3339, scan.Date); err == nil {
			event.Timestamp = ts
		}
		if scan.ScanLocation != nil {
			event.City = scan.ScanLocation.City
			event.State = scan.ScanLocation.StateOrProvinceCode
			event.PostalCode = scan.ScanLocation.PostalCode
			event.Country = scan.ScanLocation.CountryCode
		}
		info.Events = append(info.Events, event)
	}

	for _, dt := range result.DateAndTimes {
		ts, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			continue
		}
		switch dt.Type {
		case "ESTIMATED_DELIVERY":
			info.EstimatedDelivery = &ts
		case "ACTUAL_DELIVERY":
			info.ActualDelivery = &ts
		}
	}

	return info, nil
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doRequest sends a Bearer-authenticated JSON POST and decodes the response.
// A 401 invalidates the cached token so the next call re-authenticates.
func (a *FedExAdapter) doRequest(ctx context.Context, path string, reqBody, respBody interface{}) error {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: marshaling request: %v", shipping.ErrCarrierRequestFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
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
		return fmt.Errorf("%w: fedex rejected access token", shipping.ErrCarrierAuthFailed)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", shipping.ErrCarrierRequestFailed,
			resp.StatusCode, fedexErrorSummary(body))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("%w: parsing response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	return nil
}

// fedexErrorSummary extracts the first error message from an error body,
// falling back to the raw body when it does not parse.
func fedexErrorSummary(body []byte) string {
	var envelope struct {
		Errors []FedExAPIError `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return envelope.Errors[0].Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

func fedexResponseError(errs []FedExAPIError) error {
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s (%s)", shipping.ErrCarrierRequestFailed, errs[0].Message, errs[0].Code)
	}
	return fmt.Errorf("%w: response contains no output", shipping.ErrCarrierInvalidResponse)
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func fedexAddress(addr *shipping.Address) FedExAddress {
	return FedExAddress{
		StreetLines:         fedexStreetLines(addr),
		City:                addr.City,
		StateOrProvinceCode: addr.State,
		PostalCode:          addr.PostalCode,
		CountryCode:         isoCountryCode(addr.Country),
		Residential:         addr.Residential,
	}
}

func fedexShipParty(addr *shipping.Address) FedExParty {
	return FedExParty{
		Contact: &FedExContact{
			PersonName:  addr.Name,
			CompanyName: addr.Company,
			PhoneNumber: addr.Phone,
		},
		Address: fedexAddress(addr),
	}
}

func fedexStreetLines(addr *shipping.Address) []string {
	lines := []string{addr.AddressLine1}
	if addr.AddressLine2 != "" {
		lines = append(lines, addr.AddressLine2)
	}
	return lines
}

func fedexPackages(packages []shipping.Package) []FedExPackageLineItem {
	items := make([]FedExPackageLineItem, 0, len(packages))
	for _, pkg := range packages {
		item := FedExPackageLineItem{
			Weight: FedExWeight{
				Units: "LB",
				Value: pkg.Weight.InexactFloat64(),
			},
		}
		if pkg.HasDimensions() {
			item.Dimensions = &FedExDimensions{
				Length: int(pkg.Length.Ceil().IntPart()),
				Width:  int(pkg.Width.Ceil().IntPart()),
				Height: int(pkg.Height.Ceil().IntPart()),
				Units:  "IN",
			}
		}
		items = append(items, item)
	}
	return items
}

// fedexLabelStock maps the canonical label format and size to a FedEx label
// stock type. Thermal formats use label stock, document formats use paper.
func fedexLabelStock(format shipping.LabelFormat, size shipping.LabelSize) string {
	if format == shipping.LabelFormatZPL {
		return "STOCK_4X6"
	}
	if size == shipping.LabelSize8x11 {
		return "PAPER_85X11_TOP_HALF_LABEL"
	}
	return "PAPER_4X6"
}

// fedexServiceNames maps FedEx service type codes to display names
var fedexServiceNames = map[string]string{
	"FEDEX_GROUND":                 "FedEx Ground",
	"GROUND_HOME_DELIVERY":         "FedEx Home Delivery",
	"FEDEX_EXPRESS_SAVER":          "FedEx Express Saver",
	"FEDEX_2_DAY":                  "FedEx 2Day",
	"FEDEX_2_DAY_AM":               "FedEx 2Day A.M.",
	"STANDARD_OVERNIGHT":           "FedEx Standard Overnight",
	"PRIORITY_OVERNIGHT":           "FedEx Priority Overnight",
	"FIRST_OVERNIGHT":              "FedEx First Overnight",
	"FEDEX_INTERNATIONAL_PRIORITY": "FedEx International Priority",
	"INTERNATIONAL_ECONOMY":        "FedEx International Economy",
	"INTERNATIONAL_FIRST":          "FedEx International First",
	"INTERNATIONAL_GROUND":         "FedEx International Ground",
}

// fedexServiceName resolves a display name, preferring the carrier-reported
// name, then the static map, then a generic "FedEx <code>" fallback.
func fedexServiceName(serviceType, reported string) string {
	if reported != "" {
		return reported
	}
	if name, ok := fedexServiceNames[serviceType]; ok {
		return name
	}
	return "FedEx " + serviceType
}
