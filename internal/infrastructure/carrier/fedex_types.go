package carrier

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// FedExTokenResponse is the OAuth client-credentials grant response
type FedExTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// FedExAPIError is one error entry in a FedEx error payload
type FedExAPIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Shared shipment fragments
// ---------------------------------------------------------------------------

// FedExAddress is the address fragment used across rate and ship payloads
type FedExAddress struct {
	StreetLines         []string `json:"streetLines,omitempty"`
	City                string   `json:"city,omitempty"`
	StateOrProvinceCode string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string   `json:"postalCode"`
	CountryCode         string   `json:"countryCode"`
	Residential         bool     `json:"residential,omitempty"`
}

// FedExContact is the contact fragment for ship requests
type FedExContact struct {
	PersonName  string `json:"personName,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// FedExParty pairs a contact with an address
type FedExParty struct {
	Contact *FedExContact `json:"contact,omitempty"`
	Address FedExAddress  `json:"address"`
}

// FedExWeight is a unit-tagged weight
type FedExWeight struct {
	Units string `json:"units"`
	Value float64 `json:"value"`
}

// FedExDimensions is a unit-tagged dimension set
type FedExDimensions struct {
	Length int    `json:"length"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Units  string `json:"units"`
}

// FedExPackageLineItem is one parcel in a rate or ship request
type FedExPackageLineItem struct {
	Weight     FedExWeight      `json:"weight"`
	Dimensions *FedExDimensions `json:"dimensions,omitempty"`
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// FedExRateRequest is the POST /rate/v1/rates/quotes payload
type FedExRateRequest struct {
	AccountNumber     FedExAccountNumber     `json:"accountNumber"`
	RequestedShipment FedExRequestedShipment `json:"requestedShipment"`
}

// FedExAccountNumber wraps the account number the way the API expects
type FedExAccountNumber struct {
	Value string `json:"value"`
}

// FedExRequestedShipment is the shared shipment fragment for rate requests
type FedExRequestedShipment struct {
	Shipper                   FedExParty             `json:"shipper"`
	Recipient                 FedExParty             `json:"recipient"`
	ServiceType               string                 `json:"serviceType,omitempty"`
	PickupType                string                 `json:"pickupType"`
	PackagingType             string                 `json:"packagingType,omitempty"`
	RateRequestType           []string               `json:"rateRequestType,omitempty"`
	RequestedPackageLineItems []FedExPackageLineItem `json:"requestedPackageLineItems"`
}

// FedExRateResponse is the rate quote response envelope
type FedExRateResponse struct {
	Output *FedExRateOutput `json:"output"`
	Errors []FedExAPIError  `json:"errors,omitempty"`
}

// IsSuccess reports whether the response carries usable output
func (r *FedExRateResponse) IsSuccess() bool {
	return len(r.Errors) == 0 && r.Output != nil
}

// FedExRateOutput holds the rate reply list
type FedExRateOutput struct {
	RateReplyDetails []FedExRateReplyDetail `json:"rateReplyDetails"`
}

// FedExRateReplyDetail is one service's quote
type FedExRateReplyDetail struct {
	ServiceType          string                     `json:"serviceType"`
	ServiceName          string                     `json:"serviceName,omitempty"`
	RatedShipmentDetails []FedExRatedShipmentDetail `json:"ratedShipmentDetails"`
	Commit               *FedExCommitDetail         `json:"commit,omitempty"`
}

// FedExRatedShipmentDetail is one rating (account or list) for a service
type FedExRatedShipmentDetail struct {
	RateType       string  `json:"rateType,omitempty"`
	TotalNetCharge float64 `json:"totalNetCharge"`
	Currency       string  `json:"currency,omitempty"`
}

// FedExCommitDetail carries the delivery commitment for a quote
type FedExCommitDetail struct {
	DateDetail *FedExDateDetail `json:"dateDetail,omitempty"`
}

// FedExDateDetail is a day-of-week plus date commitment
type FedExDateDetail struct {
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	DayFormat string `json:"dayFormat,omitempty"`
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// FedExShipRequest is the POST /ship/v1/shipments payload
type FedExShipRequest struct {
	LabelResponseOptions string                     `json:"labelResponseOptions"`
	AccountNumber        FedExAccountNumber         `json:"accountNumber"`
	RequestedShipment    FedExShipRequestedShipment `json:"requestedShipment"`
}

// FedExShipRequestedShipment is the shipment fragment for label purchase
type FedExShipRequestedShipment struct {
	Shipper                   FedExParty              `json:"shipper"`
	Recipients                []FedExParty            `json:"recipients"`
	ServiceType               string                  `json:"serviceType"`
	PackagingType             string                  `json:"packagingType"`
	PickupType                string                  `json:"pickupType"`
	ShippingChargesPayment    FedExPayment            `json:"shippingChargesPayment"`
	LabelSpecification        FedExLabelSpecification `json:"labelSpecification"`
	RequestedPackageLineItems []FedExPackageLineItem  `json:"requestedPackageLineItems"`
}

// FedExPayment identifies who pays for the shipment
type FedExPayment struct {
	PaymentType string `json:"paymentType"`
}

// FedExLabelSpecification selects the label format and stock
type FedExLabelSpecification struct {
	ImageType           string `json:"imageType"`
	LabelStockType      string `json:"labelStockType"`
	LabelFormatType     string `json:"labelFormatType,omitempty"`
	LabelPrintingOrient string `json:"labelPrintingOrientation,omitempty"`
}

// FedExShipResponse is the label purchase response envelope
type FedExShipResponse struct {
	Output *FedExShipOutput `json:"output"`
	Errors []FedExAPIError  `json:"errors,omitempty"`
}

// IsSuccess reports whether the response carries usable output
func (r *FedExShipResponse) IsSuccess() bool {
	return len(r.Errors) == 0 && r.Output != nil
}

// FedExShipOutput holds the created shipments
type FedExShipOutput struct {
	TransactionShipments []FedExTransactionShipment `json:"transactionShipments"`
}

// FedExTransactionShipment is one created shipment with its label pieces
type FedExTransactionShipment struct {
	MasterTrackingNumber string               `json:"masterTrackingNumber"`
	ServiceType          string               `json:"serviceType,omitempty"`
	ServiceName          string               `json:"serviceName,omitempty"`
	PieceResponses       []FedExPieceResponse `json:"pieceResponses"`
}

// FedExPieceResponse is one parcel's label documents
type FedExPieceResponse struct {
	TrackingNumber   string                 `json:"trackingNumber,omitempty"`
	PackageDocuments []FedExPackageDocument `json:"packageDocuments"`
	NetRateAmount    float64                `json:"netRateAmount,omitempty"`
	Currency         string                 `json:"currencyCode,omitempty"`
}

// FedExPackageDocument carries one encoded label
type FedExPackageDocument struct {
	ContentType  string `json:"contentType,omitempty"`
	EncodedLabel string `json:"encodedLabel"`
	DocType      string `json:"docType,omitempty"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// FedExTrackRequest is the POST /track/v1/trackingnumbers payload
type FedExTrackRequest struct {
	IncludeDetailedScans bool                 `json:"includeDetailedScans"`
	TrackingInfo         []FedExTrackingInfo  `json:"trackingInfo"`
}

// FedExTrackingInfo selects one tracking number
type FedExTrackingInfo struct {
	TrackingNumberInfo FedExTrackingNumberInfo `json:"trackingNumberInfo"`
}

// FedExTrackingNumberInfo wraps the tracking number
type FedExTrackingNumberInfo struct {
	TrackingNumber string `json:"trackingNumber"`
}

// FedExTrackResponse is the tracking response envelope
type FedExTrackResponse struct {
	Output *FedExTrackOutput `json:"output"`
	Errors []FedExAPIError   `json:"errors,omitempty"`
}

// IsSuccess reports whether the response carries usable output
func (r *FedExTrackResponse) IsSuccess() bool {
	return len(r.Errors) == 0 && r.Output != nil
}

// FedExTrackOutput holds the per-number track results
type FedExTrackOutput struct {
	CompleteTrackResults []FedExCompleteTrackResult `json:"completeTrackResults"`
}

// FedExCompleteTrackResult is one tracking number's results
type FedExCompleteTrackResult struct {
	TrackingNumber string             `json:"trackingNumber"`
	TrackResults   []FedExTrackResult `json:"trackResults"`
}

// FedExTrackResult is one tracked movement with its scan history
type FedExTrackResult struct {
	LatestStatusDetail *FedExStatusDetail  `json:"latestStatusDetail,omitempty"`
	ScanEvents         []FedExScanEvent    `json:"scanEvents,omitempty"`
	DateAndTimes       []FedExDateAndTime  `json:"dateAndTimes,omitempty"`
	Error              *FedExAPIError      `json:"error,omitempty"`
}

// FedExStatusDetail is the carrier's latest status summary
type FedExStatusDetail struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// FedExScanEvent is one scan in the event history
type FedExScanEvent struct {
	Date             string            `json:"date"`
	EventDescription string            `json:"eventDescription,omitempty"`
	DerivedStatus    string            `json:"derivedStatus,omitempty"`
	ScanLocation     *FedExScanLocation `json:"scanLocation,omitempty"`
}

// FedExScanLocation locates one scan event
type FedExScanLocation struct {
	City                string `json:"city,omitempty"`
	StateOrProvinceCode string `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string `json:"postalCode,omitempty"`
	CountryCode         string `json:"countryCode,omitempty"`
}

// FedExDateAndTime is a typed timestamp (estimated delivery, actual delivery)
type FedExDateAndTime struct {
	Type     string `json:"type"`
	DateTime string `json:"dateTime"`
}
