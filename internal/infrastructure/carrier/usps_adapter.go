package carrier

import (
	"context"
	"encoding/xml"
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

const (
	ouncesPerPound = 16

	// Length-plus-girth thresholds for USPS package size classification
	uspsRegularMaxGirth = 84
	uspsLargeMaxGirth   = 108
)

// USPSAdapter implements shipping.CarrierAdapter for the USPS Web Tools API.
// USPS is the one legacy-XML carrier: every call is a GET with the XML
// payload URL-embedded in the query string.
type USPSAdapter struct {
	config     *USPSConfig
	httpClient *http.Client
}

var _ shipping.CarrierAdapter = (*USPSAdapter)(nil)

// NewUSPSAdapter creates a new USPS adapter with the given configuration
func NewUSPSAdapter(config *USPSConfig) (*USPSAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &USPSAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Carrier returns the carrier code this adapter handles
func (a *USPSAdapter) Carrier() shipping.CarrierCode {
	return shipping.CarrierUSPS
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// GetRates requests rate quotes. Domestic destinations use RateV4,
// international ones IntlRateV2; the two APIs take different payloads.
func (a *USPSAdapter) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	if req.Destination.IsDomestic() {
		return a.getDomesticRates(ctx, req)
	}
	return a.getInternationalRates(ctx, req)
}

func (a *USPSAdapter) getDomesticRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	service := "ALL"
	if req.ServiceCode != "" {
		service = req.ServiceCode
	}

	originZip := ""
	if req.Origin != nil {
		originZip = zip5(req.Origin.PostalCode)
	}

	rateReq := &USPSRateRequest{
		UserID:   a.config.UserID,
		Revision: "2",
	}
	for i := range req.Packages {
		pkg := &req.Packages[i]
		pounds, ounces := poundsAndOunces(pkg.Weight)
		size, girth := classifyPackageSize(pkg)

		ratePkg := USPSRatePackage{
			ID:             strconv.Itoa(i + 1),
			Service:        service,
			ZipOrigination: originZip,
			ZipDestination: zip5(req.Destination.PostalCode),
			Pounds:         pounds,
			Ounces:         ounces,
			Container:      "VARIABLE",
			Size:           size,
			Girth:          girth,
			Machinable:     "TRUE",
		}
		if pkg.HasDimensions() {
			ratePkg.Length = pkg.Length.String()
			ratePkg.Width = pkg.Width.String()
			ratePkg.Height = pkg.Height.String()
		}
		rateReq.Packages = append(rateReq.Packages, ratePkg)
	}

	body, err := a.doRequest(ctx, "RateV4", rateReq)
	if err != nil {
		return nil, err
	}

	var resp USPSRateResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, a.parseFailure(body, err)
	}

	rates := make([]shipping.ShippingRate, 0)
	for _, pkg := range resp.Packages {
		// A package-level error fails only that package, not the batch
		if pkg.Error != nil {
			continue
		}
		for _, postage := range pkg.Postage {
			amount, err := decimal.NewFromString(postage.Rate)
			if err != nil {
				continue
			}
			rates = append(rates, shipping.ShippingRate{
				Carrier:     shipping.CarrierUSPS,
				ServiceName: cleanUSPSServiceName(postage.MailService),
				ServiceCode: postage.ClassID,
				Rate:        amount,
				Currency:    "USD",
			})
		}
	}
	return rates, nil
}

func (a *USPSAdapter) getInternationalRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	originZip := ""
	if req.Origin != nil {
		originZip = zip5(req.Origin.PostalCode)
	}

	rateReq := &USPSIntlRateRequest{
		UserID:   a.config.UserID,
		Revision: "2",
	}
	for i := range req.Packages {
		pkg := &req.Packages[i]
		pounds, ounces := poundsAndOunces(pkg.Weight)
		_, girth := classifyPackageSize(pkg)

		value := "0"
		if pkg.InsuredValue != nil {
			value = pkg.InsuredValue.StringFixed(2)
		}

		ratePkg := USPSIntlRatePackage{
			ID:              strconv.Itoa(i + 1),
			Pounds:          pounds,
			Ounces:          ounces,
			Machinable:      "TRUE",
			MailType:        "PACKAGE",
			ValueOfContents: value,
			Country:         req.Destination.Country,
			Container:       "RECTANGULAR",
			Girth:           girth,
			OriginZip:       originZip,
		}
		if pkg.HasDimensions() {
			ratePkg.Length = pkg.Length.String()
			ratePkg.Width = pkg.Width.String()
			ratePkg.Height = pkg.Height.String()
		}
		rateReq.Packages = append(rateReq.Packages, ratePkg)
	}

	body, err := a.doRequest(ctx, "IntlRateV2", rateReq)
	if err != nil {
		return nil, err
	}

	var resp USPSIntlRateResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, a.parseFailure(body, err)
	}

	rates := make([]shipping.ShippingRate, 0)
	for _, pkg := range resp.Packages {
		if pkg.Error != nil {
			continue
		}
		for _, svc := range pkg.Services {
			amount, err := decimal.NewFromString(svc.Postage)
			if err != nil {
				continue
			}
			rates = append(rates, shipping.ShippingRate{
				Carrier:     shipping.CarrierUSPS,
				ServiceName: cleanUSPSServiceName(svc.SvcDescription),
				ServiceCode: svc.ID,
				Rate:        amount,
				Currency:    "USD",
			})
		}
	}
	return rates, nil
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// CreateShipment purchases a domestic label through the eVS API. USPS labels
// come back already base64-encoded.
func (a *USPSAdapter) CreateShipment(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: usps: origin address is required", shipping.ErrCarrierRequestFailed)
	}

	// eVS takes one parcel per call; multi-package shipments are issued
	// label by label by the caller
	pkg := &req.Packages[0]
	totalOunces := int(pkg.Weight.Mul(decimal.NewFromInt(ouncesPerPound)).Round(0).IntPart())

	labelReq := &USPSLabelRequest{
		UserID:       a.config.UserID,
		Option:       "1",
		ImageType:    string(req.LabelFormat),
		FromName:     req.Origin.Name,
		FromFirm:     req.Origin.Company,
		FromAddress1: req.Origin.AddressLine1,
		FromAddress2: req.Origin.AddressLine2,
		FromCity:     req.Origin.City,
		FromState:    req.Origin.State,
		FromZip5:     zip5(req.Origin.PostalCode),
		FromPhone:    req.Origin.Phone,
		ToName:       req.Destination.Name,
		ToFirm:       req.Destination.Company,
		ToAddress1:   req.Destination.AddressLine1,
		ToAddress2:   req.Destination.AddressLine2,
		ToCity:       req.Destination.City,
		ToState:      req.Destination.State,
		ToZip5:       zip5(req.Destination.PostalCode),
		ToPhone:      req.Destination.Phone,
		WeightInOz:   totalOunces,
		ServiceType:  req.ServiceCode,
		Machinable:   "TRUE",
		CustomerRef:  req.ReferenceNumber,
	}
	if pkg.HasDimensions() {
		labelReq.Length = pkg.Length.String()
		labelReq.Width = pkg.Width.String()
		labelReq.Height = pkg.Height.String()
	}
	if req.InsuranceAmount != nil {
		labelReq.InsuredValue = req.InsuranceAmount.StringFixed(2)
	}

	body, err := a.doRequest(ctx, "eVS", labelReq)
	if err != nil {
		return nil, err
	}

	var resp USPSLabelResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, a.parseFailure(body, err)
	}

	if resp.BarcodeNumber == "" || resp.LabelImage == "" {
		return nil, fmt.Errorf("%w: usps: label response missing barcode or image", shipping.ErrCarrierInvalidResponse)
	}

	rate := decimal.Zero
	if resp.Postage != "" {
		if parsed, err := decimal.NewFromString(resp.Postage); err == nil {
			rate = parsed
		}
	}

	now := time.Now()
	return &shipping.Shipment{
		ID:              uuid.New(),
		Carrier:         shipping.CarrierUSPS,
		ServiceCode:     req.ServiceCode,
		ServiceName:     uspsServiceName(req.ServiceCode),
		TrackingNumber:  resp.BarcodeNumber,
		LabelData:       resp.LabelImage,
		LabelFormat:     req.LabelFormat,
		LabelSize:       req.LabelSize,
		Rate:            rate,
		Currency:        "USD",
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

// TrackShipment polls TrackV2 for the current tracking status
func (a *USPSAdapter) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	trackReq := &USPSTrackRequest{
		UserID:  a.config.UserID,
		TrackID: []USPSTrackID{{ID: req.TrackingNumber}},
	}

	body, err := a.doRequest(ctx, "TrackV2", trackReq)
	if err != nil {
		return nil, err
	}

	var resp USPSTrackResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, a.parseFailure(body, err)
	}

	if len(resp.TrackInfo) == 0 {
		return nil, fmt.Errorf("%w: usps: empty track response", shipping.ErrCarrierInvalidResponse)
	}
	info := resp.TrackInfo[0]
	if info.Error != nil {
		return nil, fmt.Errorf("%w: usps: %s", shipping.ErrCarrierRequestFailed, info.Error.Description)
	}

	result := &shipping.TrackingInfo{
		TrackingNumber: req.TrackingNumber,
		Carrier:        shipping.CarrierUSPS,
		Status:         shipping.StatusInTransit,
		Events:         make([]shipping.TrackingEvent, 0, len(info.TrackDetail)+1),
	}

	// The summary is the most recent event and drives the canonical status
	if info.TrackSummary != nil {
		result.Status = shipping.MapTrackingStatus(info.TrackSummary.Event)
		result.Events = append(result.Events, uspsTrackingEvent(info.TrackSummary))
	}
	for i := range info.TrackDetail {
		result.Events = append(result.Events, uspsTrackingEvent(&info.TrackDetail[i]))
	}

	if info.ExpectedDate != "" {
		if est, err := time.Parse("January 2, 2006", info.ExpectedDate); err == nil {
			result.EstimatedDelivery = &est
		}
	}
	if result.Status == shipping.StatusDelivered && len(result.Events) > 0 {
		ts := result.Events[0].Timestamp
		result.ActualDelivery = &ts
	}

	return result, nil
}

func uspsTrackingEvent(e *USPSTrackEvent) shipping.TrackingEvent {
	event := shipping.TrackingEvent{
		Status:      e.Event,
		Description: e.Event,
		City:        e.EventCity,
		State:       e.EventState,
		PostalCode:  e.EventZIPCode,
		Country:     e.EventCountry,
	}
	if ts, err := time.Parse("January 2, 2006 3:04 pm", e.EventDate+" "+e.EventTime); err == nil {
		event.Timestamp = ts
	}
	return event
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doRequest serializes the XML payload into the query string and performs the
// Web Tools call
func (a *USPSAdapter) doRequest(ctx context.Context, api string, payload any) ([]byte, error) {
	xmlBytes, err := xml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("usps: failed to marshal request: %w", err)
	}

	params := url.Values{}
	params.Set("API", api)
	params.Set("XML", string(xmlBytes))
	requestURL := fmt.Sprintf("%s?%s", a.config.APIBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("usps: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("usps: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: usps: HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// uspsTopLevelError is the bare Error document USPS returns when the whole
// request is rejected
type uspsTopLevelError struct {
	XMLName     xml.Name `xml:"Error"`
	Number      string   `xml:"Number"`
	Description string   `xml:"Description"`
}

// parseFailure distinguishes a top-level USPS error document from a garbled
// response
func (a *USPSAdapter) parseFailure(body []byte, parseErr error) error {
	var topErr uspsTopLevelError
	if err := xml.Unmarshal(body, &topErr); err == nil && topErr.Description != "" {
		return fmt.Errorf("%w: usps: %s", shipping.ErrCarrierRequestFailed, topErr.Description)
	}
	return fmt.Errorf("%w: usps: %v", shipping.ErrCarrierInvalidResponse, parseErr)
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// poundsAndOunces converts a decimal pound weight into the whole
// pounds + ounces pair USPS expects
func poundsAndOunces(weight decimal.Decimal) (int, int) {
	pounds := int(weight.IntPart())
	ounces := int(weight.Sub(decimal.NewFromInt(int64(pounds))).
		Mul(decimal.NewFromInt(ouncesPerPound)).Round(0).IntPart())
	if ounces >= ouncesPerPound {
		pounds++
		ounces -= ouncesPerPound
	}
	return pounds, ounces
}

// classifyPackageSize classifies a parcel as REGULAR, LARGE or OVERSIZE by
// length plus girth. Packages without dimensions are REGULAR.
func classifyPackageSize(pkg *shipping.Package) (size string, girth string) {
	if !pkg.HasDimensions() {
		return "REGULAR", ""
	}

	// Length is the longest dimension; girth wraps the other two
	dims := []decimal.Decimal{*pkg.Length, *pkg.Width, *pkg.Height}
	longest := dims[0]
	rest := decimal.Zero
	for _, d := range dims[1:] {
		if d.GreaterThan(longest) {
			rest = rest.Add(longest)
			longest = d
		} else {
			rest = rest.Add(d)
		}
	}
	girthValue := rest.Mul(decimal.NewFromInt(2))
	total := longest.Add(girthValue)

	switch {
	case total.LessThanOrEqual(decimal.NewFromInt(uspsRegularMaxGirth)):
		size = "REGULAR"
	case total.LessThanOrEqual(decimal.NewFromInt(uspsLargeMaxGirth)):
		size = "LARGE"
	default:
		size = "OVERSIZE"
	}
	return size, girthValue.String()
}

// zip5 trims a postal code to the 5-digit form USPS APIs require
func zip5(postalCode string) string {
	code := strings.TrimSpace(postalCode)
	if idx := strings.Index(code, "-"); idx > 0 {
		code = code[:idx]
	}
	if len(code) > 5 {
		code = code[:5]
	}
	return code
}

// uspsServiceNames maps eVS service types to display names
var uspsServiceNames = map[string]string{
	"PRIORITY":         "Priority Mail",
	"PRIORITY EXPRESS": "Priority Mail Express",
	"FIRST CLASS":      "First-Class Mail",
	"GROUND ADVANTAGE": "USPS Ground Advantage",
	"PARCEL SELECT":    "Parcel Select Ground",
	"MEDIA MAIL":       "Media Mail",
	"LIBRARY MAIL":     "Library Mail",
}

func uspsServiceName(code string) string {
	if name, ok := uspsServiceNames[strings.ToUpper(code)]; ok {
		return name
	}
	return fmt.Sprintf("USPS %s", code)
}

// cleanUSPSServiceName strips the HTML entities USPS embeds in service names
func cleanUSPSServiceName(name string) string {
	replacer := strings.NewReplacer(
		"&lt;sup&gt;&#8482;&lt;/sup&gt;", "",
		"&lt;sup&gt;&#174;&lt;/sup&gt;", "",
		"&amp;", "&",
	)
	return strings.TrimSpace(replacer.Replace(name))
}
