package carrier

import "encoding/xml"

// Canada Post speaks namespaced XML with vendor media types. Weights are
// kilograms and dimensions centimetres on the wire.

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// CPMailingScenario is the POST /rs/ship/price payload
type CPMailingScenario struct {
	XMLName               xml.Name                 `xml:"mailing-scenario"`
	Xmlns                 string                   `xml:"xmlns,attr"`
	CustomerNumber        string                   `xml:"customer-number"`
	ParcelCharacteristics CPParcelCharacteristics  `xml:"parcel-characteristics"`
	OriginPostalCode      string                   `xml:"origin-postal-code"`
	Destination           CPDestination            `xml:"destination"`
}

// CPParcelCharacteristics describes the parcel being rated
type CPParcelCharacteristics struct {
	// Weight is in kilograms
	Weight     string        `xml:"weight"`
	Dimensions *CPDimensions `xml:"dimensions,omitempty"`
}

// CPDimensions is the parcel size in centimetres
type CPDimensions struct {
	Length string `xml:"length"`
	Width  string `xml:"width"`
	Height string `xml:"height"`
}

// CPDestination selects the destination class; exactly one child is set
type CPDestination struct {
	Domestic      *CPDomestic      `xml:"domestic,omitempty"`
	UnitedStates  *CPUnitedStates  `xml:"united-states,omitempty"`
	International *CPInternational `xml:"international,omitempty"`
}

// CPDomestic is a Canadian destination
type CPDomestic struct {
	PostalCode string `xml:"postal-code"`
}

// CPUnitedStates is a US destination
type CPUnitedStates struct {
	ZipCode string `xml:"zip-code"`
}

// CPInternational is a destination outside Canada and the US
type CPInternational struct {
	CountryCode string `xml:"country-code"`
}

// CPPriceQuotes is the rate response envelope
type CPPriceQuotes struct {
	XMLName xml.Name       `xml:"price-quotes"`
	Quotes  []CPPriceQuote `xml:"price-quote"`
}

// CPPriceQuote is one service's quote
type CPPriceQuote struct {
	ServiceCode     string             `xml:"service-code"`
	ServiceName     string             `xml:"service-name"`
	PriceDetails    CPPriceDetails     `xml:"price-details"`
	ServiceStandard *CPServiceStandard `xml:"service-standard,omitempty"`
}

// CPPriceDetails carries the quoted amount
type CPPriceDetails struct {
	Due string `xml:"due"`
}

// CPServiceStandard is the delivery commitment for a quote
type CPServiceStandard struct {
	ExpectedTransitTime  string `xml:"expected-transit-time"`
	ExpectedDeliveryDate string `xml:"expected-delivery-date"`
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CPNonContractShipment is the POST /rs/{customer}/ncshipment payload
type CPNonContractShipment struct {
	XMLName         xml.Name          `xml:"non-contract-shipment"`
	Xmlns           string            `xml:"xmlns,attr"`
	DeliverySpec    CPDeliverySpec    `xml:"delivery-spec"`
}

// CPDeliverySpec describes the shipment being purchased
type CPDeliverySpec struct {
	ServiceCode           string                  `xml:"service-code"`
	Sender                CPSender                `xml:"sender"`
	Destination           CPShipDestination       `xml:"destination"`
	ParcelCharacteristics CPParcelCharacteristics `xml:"parcel-characteristics"`
	Preferences           CPPreferences           `xml:"preferences"`
	References            *CPReferences           `xml:"references,omitempty"`
}

// CPSender is the shipment origin
type CPSender struct {
	Name          string           `xml:"name,omitempty"`
	Company       string           `xml:"company"`
	ContactPhone  string           `xml:"contact-phone,omitempty"`
	AddressDetail CPAddressDetail  `xml:"address-details"`
}

// CPShipDestination is the shipment recipient
type CPShipDestination struct {
	Name          string          `xml:"name"`
	Company       string          `xml:"company,omitempty"`
	AddressDetail CPAddressDetail `xml:"address-details"`
}

// CPAddressDetail is the shared address fragment
type CPAddressDetail struct {
	AddressLine1 string `xml:"address-line-1"`
	AddressLine2 string `xml:"address-line-2,omitempty"`
	City         string `xml:"city"`
	Province     string `xml:"prov-state,omitempty"`
	CountryCode  string `xml:"country-code"`
	PostalCode   string `xml:"postal-zip-code"`
}

// CPPreferences carries the notification flags the API requires
type CPPreferences struct {
	ShowPackingInstructions bool `xml:"show-packing-instructions"`
}

// CPReferences carries caller references printed on the label
type CPReferences struct {
	CustomerRef1 string `xml:"customer-ref-1,omitempty"`
}

// CPShipmentInfo is the shipment creation response
type CPShipmentInfo struct {
	XMLName     xml.Name `xml:"non-contract-shipment-info"`
	ShipmentID  string   `xml:"shipment-id"`
	TrackingPin string   `xml:"tracking-pin"`
	Links       CPLinks  `xml:"links"`
}

// CPLinks is the hypermedia link list Canada Post attaches to resources
type CPLinks struct {
	Links []CPLink `xml:"link"`
}

// CPLink is one hypermedia link; labels arrive as a rel="label" link that
// must be fetched in a second call
type CPLink struct {
	Rel       string `xml:"rel,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// Label returns the label link, if present
func (l *CPLinks) Label() (CPLink, bool) {
	for _, link := range l.Links {
		if link.Rel == "label" {
			return link, true
		}
	}
	return CPLink{}, false
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// CPTrackingDetail is the GET /vis/track/pin/{pin}/detail response
type CPTrackingDetail struct {
	XMLName              xml.Name            `xml:"tracking-detail"`
	ExpectedDeliveryDate string              `xml:"expected-delivery-date"`
	ActualDeliveryDate   string              `xml:"actual-delivery-date"`
	Events               []CPTrackingEvent   `xml:"significant-events>occurrence"`
}

// CPTrackingEvent is one scan in the event history
type CPTrackingEvent struct {
	EventIdentifier  string `xml:"event-identifier"`
	EventDate        string `xml:"event-date"`
	EventTime        string `xml:"event-time"`
	EventDescription string `xml:"event-description"`
	EventSite        string `xml:"event-site"`
	EventProvince    string `xml:"event-province"`
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// CPMessages is the error body Canada Post returns with 4xx statuses
type CPMessages struct {
	XMLName  xml.Name    `xml:"messages"`
	Messages []CPMessage `xml:"message"`
}

// CPMessage is one error entry
type CPMessage struct {
	Code        string `xml:"code"`
	Description string `xml:"description"`
}
