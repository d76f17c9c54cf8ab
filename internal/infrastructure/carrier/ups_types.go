package carrier

// UPS wraps every payload in a named envelope and represents numbers as
// strings; the rating and shipping APIs use PascalCase keys while the
// tracking API uses camelCase.

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// UPSTokenResponse is the OAuth client-credentials grant response.
// UPS reports expires_in as a string, not a number.
type UPSTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   string `json:"expires_in"`
}

// ---------------------------------------------------------------------------
// Shared fragments
// ---------------------------------------------------------------------------

// UPSAddress is the address fragment for rating and shipping payloads
type UPSAddress struct {
	AddressLine       []string `json:"AddressLine,omitempty"`
	City              string   `json:"City,omitempty"`
	StateProvinceCode string   `json:"StateProvinceCode,omitempty"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// UPSParty is a shipper, ship-to or ship-from party
type UPSParty struct {
	Name          string      `json:"Name,omitempty"`
	AttentionName string      `json:"AttentionName,omitempty"`
	ShipperNumber string      `json:"ShipperNumber,omitempty"`
	Phone         *UPSPhone   `json:"Phone,omitempty"`
	Address       UPSAddress  `json:"Address"`
}

// UPSPhone wraps a phone number
type UPSPhone struct {
	Number string `json:"Number"`
}

// UPSCode is the generic code-plus-description pair UPS uses everywhere
type UPSCode struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// UPSDimensions is a unit-tagged dimension set; values are strings
type UPSDimensions struct {
	UnitOfMeasurement UPSCode `json:"UnitOfMeasurement"`
	Length            string  `json:"Length"`
	Width             string  `json:"Width"`
	Height            string  `json:"Height"`
}

// UPSPackageWeight is a unit-tagged weight; the value is a string
type UPSPackageWeight struct {
	UnitOfMeasurement UPSCode `json:"UnitOfMeasurement"`
	Weight            string  `json:"Weight"`
}

// UPSRequestOption selects the API behavior ("Shop" rates all services)
type UPSRequestOption struct {
	RequestOption string `json:"RequestOption"`
}

// UPSAPIError is one entry in a UPS error payload
type UPSAPIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UPSErrorEnvelope is the body UPS returns with 4xx statuses
type UPSErrorEnvelope struct {
	Response struct {
		Errors []UPSAPIError `json:"errors"`
	} `json:"response"`
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// UPSRateRequest is the POST /api/rating/v1/{option} payload
type UPSRateRequest struct {
	RateRequest UPSRateRequestBody `json:"RateRequest"`
}

// UPSRateRequestBody is the rate request envelope body
type UPSRateRequestBody struct {
	Request  UPSRequestOption    `json:"Request"`
	Shipment UPSRateShipment     `json:"Shipment"`
}

// UPSRateShipment describes the shipment being rated
type UPSRateShipment struct {
	Shipper  UPSParty         `json:"Shipper"`
	ShipTo   UPSParty         `json:"ShipTo"`
	ShipFrom UPSParty         `json:"ShipFrom"`
	Service  *UPSCode         `json:"Service,omitempty"`
	Package  []UPSRatePackage `json:"Package"`
}

// UPSRatePackage is one parcel in a rate request
type UPSRatePackage struct {
	PackagingType UPSCode          `json:"PackagingType"`
	Dimensions    *UPSDimensions   `json:"Dimensions,omitempty"`
	PackageWeight UPSPackageWeight `json:"PackageWeight"`
}

// UPSRateResponse is the rate response envelope
type UPSRateResponse struct {
	RateResponse UPSRateResponseBody `json:"RateResponse"`
}

// UPSRateResponseBody holds the rated shipments
type UPSRateResponseBody struct {
	RatedShipment []UPSRatedShipment `json:"RatedShipment"`
}

// UPSRatedShipment is one service's quote
type UPSRatedShipment struct {
	Service              UPSCode                `json:"Service"`
	TotalCharges         UPSCharge              `json:"TotalCharges"`
	NegotiatedRateCharge *UPSNegotiatedCharges  `json:"NegotiatedRateCharges,omitempty"`
	GuaranteedDelivery   *UPSGuaranteedDelivery `json:"GuaranteedDelivery,omitempty"`
}

// UPSCharge is a currency-tagged amount; the value is a string
type UPSCharge struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// UPSNegotiatedCharges carries account-negotiated pricing when enabled
type UPSNegotiatedCharges struct {
	TotalCharge UPSCharge `json:"TotalCharge"`
}

// UPSGuaranteedDelivery is the transit commitment for a quote
type UPSGuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit,omitempty"`
	DeliveryByTime        string `json:"DeliveryByTime,omitempty"`
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// UPSShipRequest is the POST /api/shipments/v1/ship payload
type UPSShipRequest struct {
	ShipmentRequest UPSShipRequestBody `json:"ShipmentRequest"`
}

// UPSShipRequestBody is the ship request envelope body
type UPSShipRequestBody struct {
	Request            UPSRequestOption      `json:"Request"`
	Shipment           UPSShipShipment       `json:"Shipment"`
	LabelSpecification UPSLabelSpecification `json:"LabelSpecification"`
}

// UPSShipShipment describes the shipment being purchased
type UPSShipShipment struct {
	Description        string                `json:"Description,omitempty"`
	Shipper            UPSParty              `json:"Shipper"`
	ShipTo             UPSParty              `json:"ShipTo"`
	ShipFrom           UPSParty              `json:"ShipFrom"`
	PaymentInformation UPSPaymentInformation `json:"PaymentInformation"`
	Service            UPSCode               `json:"Service"`
	Package            []UPSShipPackage      `json:"Package"`
	ReferenceNumber    *UPSReferenceNumber   `json:"ReferenceNumber,omitempty"`
	ReturnService      *UPSCode              `json:"ReturnService,omitempty"`
}

// UPSPaymentInformation bills the shipment to the shipper account
type UPSPaymentInformation struct {
	ShipmentCharge UPSShipmentCharge `json:"ShipmentCharge"`
}

// UPSShipmentCharge identifies the charge type and payer
type UPSShipmentCharge struct {
	Type        string         `json:"Type"`
	BillShipper UPSBillShipper `json:"BillShipper"`
}

// UPSBillShipper names the paying account
type UPSBillShipper struct {
	AccountNumber string `json:"AccountNumber"`
}

// UPSShipPackage is one parcel in a ship request
type UPSShipPackage struct {
	Description   string           `json:"Description,omitempty"`
	Packaging     UPSCode          `json:"Packaging"`
	Dimensions    *UPSDimensions   `json:"Dimensions,omitempty"`
	PackageWeight UPSPackageWeight `json:"PackageWeight"`
}

// UPSReferenceNumber is a caller reference printed on the label
type UPSReferenceNumber struct {
	Value string `json:"Value"`
}

// UPSLabelSpecification selects the label image format and stock size
type UPSLabelSpecification struct {
	LabelImageFormat UPSCode           `json:"LabelImageFormat"`
	LabelStockSize   UPSLabelStockSize `json:"LabelStockSize"`
}

// UPSLabelStockSize is the label stock in whole inches, as strings
type UPSLabelStockSize struct {
	Height string `json:"Height"`
	Width  string `json:"Width"`
}

// UPSShipResponse is the ship response envelope
type UPSShipResponse struct {
	ShipmentResponse UPSShipResponseBody `json:"ShipmentResponse"`
}

// UPSShipResponseBody holds the shipment results
type UPSShipResponseBody struct {
	ShipmentResults UPSShipmentResults `json:"ShipmentResults"`
}

// UPSShipmentResults is the created shipment with its labels
type UPSShipmentResults struct {
	ShipmentIdentificationNumber string              `json:"ShipmentIdentificationNumber"`
	ShipmentCharges              *UPSShipmentCharges `json:"ShipmentCharges,omitempty"`
	PackageResults               []UPSPackageResult  `json:"PackageResults"`
}

// UPSShipmentCharges totals the shipment cost
type UPSShipmentCharges struct {
	TotalCharges UPSCharge `json:"TotalCharges"`
}

// UPSPackageResult is one parcel's tracking number and label
type UPSPackageResult struct {
	TrackingNumber string            `json:"TrackingNumber"`
	ShippingLabel  *UPSShippingLabel `json:"ShippingLabel,omitempty"`
}

// UPSShippingLabel carries the base64 label image
type UPSShippingLabel struct {
	ImageFormat  UPSCode `json:"ImageFormat"`
	GraphicImage string  `json:"GraphicImage"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// UPSTrackResponse is the GET /api/track/v1/details/{number} response.
// Unlike rating and shipping, the tracking API uses camelCase keys.
type UPSTrackResponse struct {
	TrackResponse UPSTrackResponseBody `json:"trackResponse"`
}

// UPSTrackResponseBody holds the tracked shipments
type UPSTrackResponseBody struct {
	Shipment []UPSTrackShipment `json:"shipment"`
}

// UPSTrackShipment is one shipment's tracked packages
type UPSTrackShipment struct {
	Package []UPSTrackPackage `json:"package"`
}

// UPSTrackPackage is one parcel's tracking detail
type UPSTrackPackage struct {
	TrackingNumber string             `json:"trackingNumber"`
	DeliveryDate   []UPSDeliveryDate  `json:"deliveryDate,omitempty"`
	DeliveryTime   *UPSDeliveryTime   `json:"deliveryTime,omitempty"`
	Activity       []UPSTrackActivity `json:"activity,omitempty"`
	CurrentStatus  *UPSTrackStatus    `json:"currentStatus,omitempty"`
}

// UPSDeliveryDate is a typed delivery date ("SDD" scheduled, "DEL" actual)
type UPSDeliveryDate struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// UPSDeliveryTime is the delivery time window
type UPSDeliveryTime struct {
	EndTime string `json:"endTime,omitempty"`
}

// UPSTrackActivity is one scan in the activity history
type UPSTrackActivity struct {
	Location *UPSTrackLocation `json:"location,omitempty"`
	Status   *UPSTrackStatus   `json:"status,omitempty"`
	Date     string            `json:"date"`
	Time     string            `json:"time"`
}

// UPSTrackLocation locates one activity entry
type UPSTrackLocation struct {
	Address UPSTrackAddress `json:"address"`
}

// UPSTrackAddress is the tracking flavor of an address
type UPSTrackAddress struct {
	City          string `json:"city,omitempty"`
	StateProvince string `json:"stateProvince,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`
}

// UPSTrackStatus is a status entry with its carrier code
type UPSTrackStatus struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
	Code        string `json:"code,omitempty"`
}
