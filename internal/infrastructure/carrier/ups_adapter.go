package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shipping"
)

// UPSAdapter implements shipping.CarrierAdapter for the UPS REST API.
// The OAuth grant uses Basic auth with the client credentials; business
// calls are Bearer-authenticated JSON, except tracking which is a GET.
type UPSAdapter struct {
	config     *UPSConfig
	httpClient *http.Client
	tokens     *tokenCache
}

var _ shipping.CarrierAdapter = (*UPSAdapter)(nil)

// NewUPSAdapter creates a new UPS adapter with the given configuration
func NewUPSAdapter(config *UPSConfig) (*UPSAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &UPSAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}
	a.tokens = newTokenCache(a.fetchToken)
	return a, nil
}

// Carrier returns the carrier code this adapter handles
func (a *UPSAdapter) Carrier() shipping.CarrierCode {
	return shipping.CarrierUPS
}

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// fetchToken performs the client-credentials grant against
// /security/v1/oauth/token. UPS takes the client credentials as Basic auth.
func (a *UPSAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.APIBaseURL+"/security/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: building token request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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
		return "", 0, fmt.Errorf("%w: ups rejected client credentials (HTTP %d)", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("%w: token endpoint returned HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}

	var tokenResp UPSTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("%w: parsing token response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response missing access_token", shipping.ErrCarrierInvalidResponse)
	}

	expiresIn, err := strconv.Atoi(tokenResp.ExpiresIn)
	if err != nil || expiresIn <= 0 {
		return "", 0, fmt.Errorf("%w: token response has invalid expires_in %q", shipping.ErrCarrierInvalidResponse, tokenResp.ExpiresIn)
	}

	return tokenResp.AccessToken, time.Duration(expiresIn) * time.Second, nil
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// GetRates requests rate quotes. "Shop" rates every service; a specific
// service code narrows the call to "Rate".
func (a *UPSAdapter) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: ups rating requires an origin address", shipping.ErrCarrierRequestFailed)
	}

	option := "Shop"
	var service *UPSCode
	if req.ServiceCode != "" {
		option = "Rate"
		service = &UPSCode{Code: req.ServiceCode}
	}

	shipper := upsParty(req.Origin)
	shipper.ShipperNumber = a.config.AccountNumber

	upsReq := &UPSRateRequest{
		RateRequest: UPSRateRequestBody{
			Request: UPSRequestOption{RequestOption: option},
			Shipment: UPSRateShipment{
				Shipper:  shipper,
				ShipTo:   upsParty(&req.Destination),
				ShipFrom: upsParty(req.Origin),
				Service:  service,
				Package:  upsRatePackages(req.Packages),
			},
		},
	}

	var upsResp UPSRateResponse
	if err := a.doRequest(ctx, http.MethodPost, "/api/rating/v1/"+option, upsReq, &upsResp); err != nil {
		return nil, err
	}

	rates := make([]shipping.ShippingRate, 0, len(upsResp.RateResponse.RatedShipment))
	for _, rated := range upsResp.RateResponse.RatedShipment {
		amount, err := decimal.NewFromString(rated.TotalCharges.MonetaryValue)
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable charge %q", shipping.ErrCarrierInvalidResponse, rated.TotalCharges.MonetaryValue)
		}

		currency := rated.TotalCharges.CurrencyCode
		if currency == "" {
			currency = "USD"
		}

		rate := shipping.ShippingRate{
			Carrier:     shipping.CarrierUPS,
			ServiceName: upsServiceName(rated.Service.Code),
			ServiceCode: rated.Service.Code,
			Rate:        amount,
			Currency:    currency,
		}
		// Negotiated pricing, when present, is the billable rate; the
		// published charge becomes the retail comparison.
		if rated.NegotiatedRateCharge != nil {
			if negotiated, err := decimal.NewFromString(rated.NegotiatedRateCharge.TotalCharge.MonetaryValue); err == nil {
				retail := rate.Rate
				rate.Rate = negotiated
				rate.RetailRate = &retail
			}
		}
		if rated.GuaranteedDelivery != nil && rated.GuaranteedDelivery.BusinessDaysInTransit != "" {
			if days, err := strconv.Atoi(rated.GuaranteedDelivery.BusinessDaysInTransit); err == nil {
				rate.DeliveryDays = &days
			}
		}
		rates = append(rates, rate)
	}

	return rates, nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CreateShipment purchases a label via POST /api/shipments/v1/ship
func (a *UPSAdapter) CreateShipment(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: ups shipment requires an origin address", shipping.ErrCarrierRequestFailed)
	}

	shipper := upsParty(req.Origin)
	shipper.ShipperNumber = a.config.AccountNumber

	shipment := UPSShipShipment{
		Shipper:  shipper,
		ShipTo:   upsParty(&req.Destination),
		ShipFrom: upsParty(req.Origin),
		PaymentInformation: UPSPaymentInformation{
			ShipmentCharge: UPSShipmentCharge{
				Type:        "01",
				BillShipper: UPSBillShipper{AccountNumber: a.config.AccountNumber},
			},
		},
		Service: UPSCode{Code: req.ServiceCode},
		Package: upsShipPackages(req.Packages),
	}
	if req.ReferenceNumber != "" {
		shipment.ReferenceNumber = &UPSReferenceNumber{Value: req.ReferenceNumber}
	}
	if req.IsReturnLabel {
		// "9" is UPS print return label
		shipment.ReturnService = &UPSCode{Code: "9"}
	}

	upsReq := &UPSShipRequest{
		ShipmentRequest: UPSShipRequestBody{
			Request:  UPSRequestOption{RequestOption: "nonvalidate"},
			Shipment: shipment,
			LabelSpecification: UPSLabelSpecification{
				LabelImageFormat: UPSCode{Code: upsLabelFormat(req.LabelFormat)},
				LabelStockSize:   upsLabelStock(req.LabelSize),
			},
		},
	}

	var upsResp UPSShipResponse
	if err := a.doRequest(ctx, http.MethodPost, "/api/shipments/v1/ship", upsReq, &upsResp); err != nil {
		return nil, err
	}

	results := upsResp.ShipmentResponse.ShipmentResults
	if len(results.PackageResults) == 0 {
		return nil, fmt.Errorf("%w: ship response contains no packages", shipping.ErrCarrierInvalidResponse)
	}

	first := results.PackageResults[0]
	trackingNumber := first.TrackingNumber
	if trackingNumber == "" {
		trackingNumber = results.ShipmentIdentificationNumber
	}
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: ship response missing tracking number", shipping.ErrCarrierInvalidResponse)
	}
	if first.ShippingLabel == nil || first.ShippingLabel.GraphicImage == "" {
		return nil, fmt.Errorf("%w: ship response missing label", shipping.ErrCarrierInvalidResponse)
	}

	rate := decimal.Zero
	currency := "USD"
	if results.ShipmentCharges != nil {
		if amount, err := decimal.NewFromString(results.ShipmentCharges.TotalCharges.MonetaryValue); err == nil {
			rate = amount
		}
		if results.ShipmentCharges.TotalCharges.CurrencyCode != "" {
			currency = results.ShipmentCharges.TotalCharges.CurrencyCode
		}
	}

	now := time.Now().UTC()
	return &shipping.Shipment{
		ID:                uuid.New(),
		OrderID:           req.OrderID,
		Carrier:           shipping.CarrierUPS,
		ServiceCode:       req.ServiceCode,
		ServiceName:       upsServiceName(req.ServiceCode),
		TrackingNumber:    trackingNumber,
		LabelData:         first.ShippingLabel.GraphicImage,
		LabelFormat:       req.LabelFormat,
		LabelSize:         req.LabelSize,
		Rate:              rate,
		Currency:          currency,
		Origin:            *req.Origin,
		Destination:       req.Destination,
		Status:            shipping.StatusLabelCreated,
		ReferenceNumber:   req.ReferenceNumber,
		CarrierShipmentID: results.ShipmentIdentificationNumber,
		IsReturnLabel:     req.IsReturnLabel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackShipment polls tracking via GET /api/track/v1/details/{number}
func (a *UPSAdapter) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	path := "/api/track/v1/details/" + url.PathEscape(req.TrackingNumber)

	var upsResp UPSTrackResponse
	if err := a.doRequest(ctx, http.MethodGet, path, nil, &upsResp); err != nil {
		return nil, err
	}

	if len(upsResp.TrackResponse.Shipment) == 0 ||
		len(upsResp.TrackResponse.Shipment[0].Package) == 0 {
		return nil, fmt.Errorf("%w: track response contains no packages", shipping.ErrCarrierInvalidResponse)
	}

	pkg := upsResp.TrackResponse.Shipment[0].Package[0]

	info := &shipping.TrackingInfo{
		TrackingNumber: req.TrackingNumber,
		Carrier:        shipping.CarrierUPS,
		Status:         shipping.StatusInTransit,
	}
	if pkg.CurrentStatus != nil {
		info.Status = shipping.MapTrackingStatus(pkg.CurrentStatus.Description)
	}

	for _, activity := range pkg.Activity {
		event := shipping.TrackingEvent{
			Timestamp: upsTimestamp(activity.Date, activity.Time),
		}
		if activity.Status != nil {
			event.Status = activity.Status.Description
			event.Description = activity.Status.Description
		}
		if activity.Location != nil {
			event.City = activity.Location.Address.City
			event.State = activity.Location.Address.StateProvince
			event.PostalCode = activity.Location.Address.PostalCode
			event.Country = activity.Location.Address.Country
		}
		info.Events = append(info.Events, event)
	}

	for _, dd := range pkg.DeliveryDate {
		ts, err := time.Parse("20060102", dd.Date)
		if err != nil {
			continue
		}
		switch dd.Type {
		case "DEL":
			info.ActualDelivery = &ts
		case "SDD", "RDD":
			info.EstimatedDelivery = &ts
		}
	}

	return info, nil
}

// upsTimestamp combines UPS's split date and time activity fields
func upsTimestamp(date, clock string) time.Time {
	if ts, err := time.Parse("20060102 150405", date+" "+clock); err == nil {
		return ts
	}
	ts, _ := time.Parse("20060102", date)
	return ts
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doRequest sends a Bearer-authenticated request and decodes the response.
// A 401 invalidates the cached token so the next call re-authenticates.
func (a *UPSAdapter) doRequest(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
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
		return fmt.Errorf("%w: ups rejected access token", shipping.ErrCarrierAuthFailed)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", shipping.ErrCarrierRequestFailed,
			resp.StatusCode, upsErrorSummary(body))
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("%w: parsing response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	return nil
}

// upsErrorSummary extracts the first error message from an error body,
// falling back to the raw body when it does not parse.
func upsErrorSummary(body []byte) string {
	var envelope UPSErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Response.Errors) > 0 {
		return envelope.Response.Errors[0].Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func upsParty(addr *shipping.Address) UPSParty {
	name := addr.Company
	if name == "" {
		name = addr.Name
	}
	party := UPSParty{
		Name:          name,
		AttentionName: addr.Name,
		Address: UPSAddress{
			AddressLine:       upsAddressLines(addr),
			City:              addr.City,
			StateProvinceCode: addr.State,
			PostalCode:        addr.PostalCode,
			CountryCode:       isoCountryCode(addr.Country),
		},
	}
	if addr.Phone != "" {
		party.Phone = &UPSPhone{Number: addr.Phone}
	}
	return party
}

func upsAddressLines(addr *shipping.Address) []string {
	lines := []string{addr.AddressLine1}
	if addr.AddressLine2 != "" {
		lines = append(lines, addr.AddressLine2)
	}
	return lines
}

func upsRatePackages(packages []shipping.Package) []UPSRatePackage {
	items := make([]UPSRatePackage, 0, len(packages))
	for _, pkg := range packages {
		item := UPSRatePackage{
			// "02" is customer-supplied packaging
			PackagingType: UPSCode{Code: "02"},
			PackageWeight: upsWeight(pkg.Weight),
		}
		if pkg.HasDimensions() {
			item.Dimensions = upsDimensions(&pkg)
		}
		items = append(items, item)
	}
	return items
}

func upsShipPackages(packages []shipping.Package) []UPSShipPackage {
	items := make([]UPSShipPackage, 0, len(packages))
	for _, pkg := range packages {
		item := UPSShipPackage{
			Description:   pkg.Description,
			Packaging:     UPSCode{Code: "02"},
			PackageWeight: upsWeight(pkg.Weight),
		}
		if pkg.HasDimensions() {
			item.Dimensions = upsDimensions(&pkg)
		}
		items = append(items, item)
	}
	return items
}

func upsWeight(weight decimal.Decimal) UPSPackageWeight {
	return UPSPackageWeight{
		UnitOfMeasurement: UPSCode{Code: "LBS"},
		Weight:            weight.String(),
	}
}

func upsDimensions(pkg *shipping.Package) *UPSDimensions {
	return &UPSDimensions{
		UnitOfMeasurement: UPSCode{Code: "IN"},
		Length:            pkg.Length.Ceil().String(),
		Width:             pkg.Width.Ceil().String(),
		Height:            pkg.Height.Ceil().String(),
	}
}

// upsLabelFormat maps the canonical label format to a UPS image format code.
// UPS has no native PDF label; GIF is the portable raster substitute.
func upsLabelFormat(format shipping.LabelFormat) string {
	switch format {
	case shipping.LabelFormatZPL:
		return "ZPL"
	case shipping.LabelFormatPNG:
		return "PNG"
	default:
		return "GIF"
	}
}

func upsLabelStock(size shipping.LabelSize) UPSLabelStockSize {
	if size == shipping.LabelSize8x11 {
		return UPSLabelStockSize{Height: "11", Width: "8"}
	}
	return UPSLabelStockSize{Height: "6", Width: "4"}
}

// upsServiceNames maps UPS service codes to display names
var upsServiceNames = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Worldwide Express",
	"08": "UPS Worldwide Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early",
	"54": "UPS Worldwide Express Plus",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Worldwide Saver",
}

// upsServiceName resolves a display name with a generic fallback for
// unmapped codes
func upsServiceName(code string) string {
	if name, ok := upsServiceNames[code]; ok {
		return name
	}
	return "UPS " + code
}
