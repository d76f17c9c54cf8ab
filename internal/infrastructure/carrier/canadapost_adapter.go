package carrier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
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

const (
	cpRateXmlns = "http://www.canadapost.ca/ws/ship/rate-v4"
	cpShipXmlns = "http://www.canadapost.ca/ws/ncshipment-v4"

	cpRateMediaType  = "application/vnd.cpc.ship.rate-v4+xml"
	cpShipMediaType  = "application/vnd.cpc.ncshipment-v4+xml"
	cpTrackMediaType = "application/vnd.cpc.track-v2+xml"
)

// kilogramsPerPound converts the canonical pound weights to Canada Post's
// kilogram wire unit
var kilogramsPerPound = decimal.NewFromFloat(0.45359237)

// centimetresPerInch converts the canonical inch dimensions to centimetres
var centimetresPerInch = decimal.NewFromFloat(2.54)

// CanadaPostAdapter implements shipping.CarrierAdapter for the Canada Post
// REST API. Every call carries Basic auth and a vendor XML media type; there
// is no token lifecycle. Labels arrive as a hypermedia link that must be
// fetched in a second call.
type CanadaPostAdapter struct {
	config     *CanadaPostConfig
	httpClient *http.Client
}

var _ shipping.CarrierAdapter = (*CanadaPostAdapter)(nil)

// NewCanadaPostAdapter creates a new Canada Post adapter with the given
// configuration
func NewCanadaPostAdapter(config *CanadaPostConfig) (*CanadaPostAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &CanadaPostAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Carrier returns the carrier code this adapter handles
func (a *CanadaPostAdapter) Carrier() shipping.CarrierCode {
	return shipping.CarrierCanadaPost
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// GetRates requests rate quotes via POST /rs/ship/price. Canada Post rates
// one parcel per call; multi-package requests are quoted on the first parcel.
func (a *CanadaPostAdapter) GetRates(ctx context.Context, req *shipping.RateRequest) ([]shipping.ShippingRate, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: canada post rating requires an origin address", shipping.ErrCarrierRequestFailed)
	}
	if len(req.Packages) == 0 {
		return nil, fmt.Errorf("%w: canada post rating requires a package", shipping.ErrCarrierRequestFailed)
	}

	scenario := &CPMailingScenario{
		Xmlns:                 cpRateXmlns,
		CustomerNumber:        a.config.CustomerNumber,
		ParcelCharacteristics: cpParcel(&req.Packages[0]),
		OriginPostalCode:      cpPostalCode(req.Origin.PostalCode),
		Destination:           cpDestination(&req.Destination),
	}

	var quotes CPPriceQuotes
	if err := a.doRequest(ctx, http.MethodPost, "/rs/ship/price", cpRateMediaType, scenario, &quotes); err != nil {
		return nil, err
	}

	rates := make([]shipping.ShippingRate, 0, len(quotes.Quotes))
	for _, quote := range quotes.Quotes {
		amount, err := decimal.NewFromString(quote.PriceDetails.Due)
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable price %q", shipping.ErrCarrierInvalidResponse, quote.PriceDetails.Due)
		}

		rate := shipping.ShippingRate{
			Carrier:     shipping.CarrierCanadaPost,
			ServiceName: quote.ServiceName,
			ServiceCode: quote.ServiceCode,
			Rate:        amount,
			Currency:    "CAD",
		}
		if quote.ServiceStandard != nil && quote.ServiceStandard.ExpectedDeliveryDate != "" {
			deliveryDate := quote.ServiceStandard.ExpectedDeliveryDate
			rate.DeliveryDate = &deliveryDate
		}
		rates = append(rates, rate)
	}

	return rates, nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CreateShipment purchases a label via POST /rs/{customer}/ncshipment, then
// follows the rel="label" link to fetch the label bytes.
func (a *CanadaPostAdapter) CreateShipment(ctx context.Context, req *shipping.CreateShipmentRequest) (*shipping.Shipment, error) {
	if req.Origin == nil {
		return nil, fmt.Errorf("%w: canada post shipment requires an origin address", shipping.ErrCarrierRequestFailed)
	}
	if len(req.Packages) == 0 {
		return nil, fmt.Errorf("%w: canada post shipment requires a package", shipping.ErrCarrierRequestFailed)
	}

	cpShipment := &CPNonContractShipment{
		Xmlns: cpShipXmlns,
		DeliverySpec: CPDeliverySpec{
			ServiceCode: req.ServiceCode,
			Sender: CPSender{
				Name:          req.Origin.Name,
				Company:       cpCompany(req.Origin),
				ContactPhone:  req.Origin.Phone,
				AddressDetail: cpAddressDetail(req.Origin),
			},
			Destination: CPShipDestination{
				Name:          req.Destination.Name,
				Company:       req.Destination.Company,
				AddressDetail: cpAddressDetail(&req.Destination),
			},
			ParcelCharacteristics: cpParcel(&req.Packages[0]),
			Preferences:           CPPreferences{ShowPackingInstructions: false},
		},
	}
	if req.ReferenceNumber != "" {
		cpShipment.DeliverySpec.References = &CPReferences{CustomerRef1: req.ReferenceNumber}
	}

	path := "/rs/" + url.PathEscape(a.config.CustomerNumber) + "/ncshipment"

	var info CPShipmentInfo
	if err := a.doRequest(ctx, http.MethodPost, path, cpShipMediaType, cpShipment, &info); err != nil {
		return nil, err
	}
	if info.TrackingPin == "" {
		return nil, fmt.Errorf("%w: shipment response missing tracking pin", shipping.ErrCarrierInvalidResponse)
	}

	labelLink, ok := info.Links.Label()
	if !ok {
		return nil, fmt.Errorf("%w: shipment response missing label link", shipping.ErrCarrierInvalidResponse)
	}
	labelData, err := a.fetchLabel(ctx, labelLink)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &shipping.Shipment{
		ID:                uuid.New(),
		OrderID:           req.OrderID,
		Carrier:           shipping.CarrierCanadaPost,
		ServiceCode:       req.ServiceCode,
		ServiceName:       cpServiceName(req.ServiceCode),
		TrackingNumber:    info.TrackingPin,
		LabelData:         labelData,
		LabelFormat:       shipping.LabelFormatPDF,
		LabelSize:         req.LabelSize,
		Currency:          "CAD",
		Origin:            *req.Origin,
		Destination:       req.Destination,
		Status:            shipping.StatusLabelCreated,
		ReferenceNumber:   req.ReferenceNumber,
		CarrierShipmentID: info.ShipmentID,
		IsReturnLabel:     req.IsReturnLabel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// fetchLabel downloads the label artifact and returns it base64-encoded.
// Canada Post serves labels as raw PDF bytes, not markup.
func (a *CanadaPostAdapter) fetchLabel(ctx context.Context, link CPLink) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link.Href, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building label request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.SetBasicAuth(a.config.Username, a.config.Password)
	if link.MediaType != "" {
		httpReq.Header.Set("Accept", link.MediaType)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading label: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: label fetch returned HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: label fetch returned empty body", shipping.ErrCarrierInvalidResponse)
	}

	return base64.StdEncoding.EncodeToString(body), nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// TrackShipment polls tracking via GET /vis/track/pin/{pin}/detail
func (a *CanadaPostAdapter) TrackShipment(ctx context.Context, req *shipping.TrackingRequest) (*shipping.TrackingInfo, error) {
	path := "/vis/track/pin/" + url.PathEscape(req.TrackingNumber) + "/detail"

	var detail CPTrackingDetail
	if err := a.doRequest(ctx, http.MethodGet, path, cpTrackMediaType, nil, &detail); err != nil {
		return nil, err
	}

	info := &shipping.TrackingInfo{
		TrackingNumber: req.TrackingNumber,
		Carrier:        shipping.CarrierCanadaPost,
		Status:         shipping.StatusInTransit,
	}

	// The newest event drives the canonical status
	if len(detail.Events) > 0 {
		info.Status = shipping.MapTrackingStatus(detail.Events[0].EventDescription)
	}

	for _, ev := range detail.Events {
		info.Events = append(info.Events, shipping.TrackingEvent{
			Timestamp:   cpTimestamp(ev.EventDate, ev.EventTime),
			Status:      ev.EventDescription,
			Description: ev.EventDescription,
			City:        ev.EventSite,
			State:       ev.EventProvince,
			Country:     "CA",
		})
	}

	if detail.ExpectedDeliveryDate != "" {
		if ts, err := time.Parse("2006-01-02", detail.ExpectedDeliveryDate); err == nil {
			info.EstimatedDelivery = &ts
		}
	}
	if detail.ActualDeliveryDate != "" {
		if ts, err := time.Parse("2006-01-02", detail.ActualDeliveryDate); err == nil {
			info.ActualDelivery = &ts
		}
	}

	return info, nil
}

// cpTimestamp combines Canada Post's split date and time event fields
func cpTimestamp(date, clock string) time.Time {
	if clock != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock); err == nil {
			return ts
		}
	}
	ts, _ := time.Parse("2006-01-02", date)
	return ts
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doRequest sends a Basic-authenticated XML request and decodes the
// response. The same vendor media type travels as both Content-Type and
// Accept.
func (a *CanadaPostAdapter) doRequest(ctx context.Context, method, path, mediaType string, reqBody, respBody interface{}) error {
	var payload io.Reader
	if reqBody != nil {
		data, err := xml.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("%w: marshaling request: %v", shipping.ErrCarrierRequestFailed, err)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", shipping.ErrCarrierRequestFailed, err)
	}
	httpReq.SetBasicAuth(a.config.Username, a.config.Password)
	httpReq.Header.Set("Accept", mediaType)
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", mediaType)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: canada post rejected credentials (HTTP %d)", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", shipping.ErrCarrierRequestFailed,
			resp.StatusCode, cpErrorSummary(body))
	}

	if err := xml.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("%w: parsing response: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	return nil
}

func cpErrorSummary(body []byte) string {
	var messages CPMessages
	if err := xml.Unmarshal(body, &messages); err == nil && len(messages.Messages) > 0 {
		return messages.Messages[0].Description
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// poundsToKilograms converts the canonical pound weight to kilograms with
// three decimal places
func poundsToKilograms(weight decimal.Decimal) decimal.Decimal {
	return weight.Mul(kilogramsPerPound).Round(3)
}

// inchesToCentimetres converts an inch dimension to centimetres with one
// decimal place
func inchesToCentimetres(d decimal.Decimal) decimal.Decimal {
	return d.Mul(centimetresPerInch).Round(1)
}

func cpParcel(pkg *shipping.Package) CPParcelCharacteristics {
	parcel := CPParcelCharacteristics{
		Weight: poundsToKilograms(pkg.Weight).String(),
	}
	if pkg.HasDimensions() {
		parcel.Dimensions = &CPDimensions{
			Length: inchesToCentimetres(*pkg.Length).String(),
			Width:  inchesToCentimetres(*pkg.Width).String(),
			Height: inchesToCentimetres(*pkg.Height).String(),
		}
	}
	return parcel
}

// cpDestination classifies the destination the way the rate API requires:
// domestic, US, or international, each with its own element.
func cpDestination(addr *shipping.Address) CPDestination {
	country := isoCountryCode(addr.Country)
	switch country {
	case "CA":
		return CPDestination{Domestic: &CPDomestic{PostalCode: cpPostalCode(addr.PostalCode)}}
	case "US":
		return CPDestination{UnitedStates: &CPUnitedStates{ZipCode: addr.PostalCode}}
	default:
		return CPDestination{International: &CPInternational{CountryCode: country}}
	}
}

func cpAddressDetail(addr *shipping.Address) CPAddressDetail {
	return CPAddressDetail{
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		City:         addr.City,
		Province:     addr.State,
		CountryCode:  isoCountryCode(addr.Country),
		PostalCode:   cpPostalCode(addr.PostalCode),
	}
}

// cpCompany returns the sender company, which the API requires non-empty
func cpCompany(addr *shipping.Address) string {
	if addr.Company != "" {
		return addr.Company
	}
	return addr.Name
}

// cpPostalCode normalizes a Canadian postal code to the uppercase,
// unspaced form the API expects. Non-Canadian codes pass through.
func cpPostalCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(code, " ", ""))
}

// cpServiceNames maps Canada Post service codes to display names
var cpServiceNames = map[string]string{
	"DOM.RP":    "Canada Post Regular Parcel",
	"DOM.EP":    "Canada Post Expedited Parcel",
	"DOM.XP":    "Canada Post Xpresspost",
	"DOM.PC":    "Canada Post Priority",
	"USA.EP":    "Canada Post Expedited Parcel USA",
	"USA.XP":    "Canada Post Xpresspost USA",
	"USA.TP":    "Canada Post Tracked Packet USA",
	"USA.SP.AIR": "Canada Post Small Packet USA Air",
	"INT.XP":    "Canada Post Xpresspost International",
	"INT.TP":    "Canada Post Tracked Packet International",
}

// cpServiceName resolves a display name with a generic fallback for
// unmapped codes
func cpServiceName(code string) string {
	if name, ok := cpServiceNames[code]; ok {
		return name
	}
	return "Canada Post " + code
}
