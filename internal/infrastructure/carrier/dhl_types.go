package carrier

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// DHLTokenResponse is the /auth/v4/accesstoken response
type DHLTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// DHLAPIError is the error body DHL returns with 4xx statuses
type DHLAPIError struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ---------------------------------------------------------------------------
// Shared fragments
// ---------------------------------------------------------------------------

// DHLAddress is the address fragment used across rate and label payloads
type DHLAddress struct {
	Name           string `json:"name,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state,omitempty"`
	PostalCode     string `json:"postalCode"`
	Country        string `json:"country"`
	Phone          string `json:"phone,omitempty"`
}

// DHLWeight is a unit-tagged weight
type DHLWeight struct {
	Value         float64 `json:"value"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
}

// DHLDimension is a unit-tagged dimension set
type DHLDimension struct {
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
}

// DHLPackageDetail describes one parcel
type DHLPackageDetail struct {
	PackageID          string        `json:"packageId,omitempty"`
	PackageDescription string        `json:"packageDescription,omitempty"`
	Weight             DHLWeight     `json:"weight"`
	Dimension          *DHLDimension `json:"dimension,omitempty"`
	BillingReference1  string        `json:"billingReference1,omitempty"`
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// DHLRateRequest is the POST /rates/v4/quote payload
type DHLRateRequest struct {
	Pickup             string           `json:"pickup"`
	DistributionCenter string           `json:"distributionCenter,omitempty"`
	OrderedProductID   string           `json:"orderedProductId,omitempty"`
	ReturnAddress      DHLAddress       `json:"returnAddress"`
	ConsigneeAddress   DHLAddress       `json:"consigneeAddress"`
	PackageDetail      DHLPackageDetail `json:"packageDetail"`
}

// DHLRateResponse is the rate quote response
type DHLRateResponse struct {
	Products []DHLRateProduct `json:"products"`
}

// DHLRateProduct is one product's quote
type DHLRateProduct struct {
	OrderedProductID string   `json:"orderedProductId"`
	ProductName      string   `json:"productName,omitempty"`
	Rate             *DHLRate `json:"rate,omitempty"`
	EstimatedDays    int      `json:"estimatedDeliveryDays,omitempty"`
}

// DHLRate is a currency-tagged amount
type DHLRate struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// DHLLabelRequest is the POST /shipping/v4/label payload
type DHLLabelRequest struct {
	Pickup             string           `json:"pickup"`
	DistributionCenter string           `json:"distributionCenter,omitempty"`
	OrderedProductID   string           `json:"orderedProductId"`
	ReturnAddress      DHLAddress       `json:"returnAddress"`
	ConsigneeAddress   DHLAddress       `json:"consigneeAddress"`
	PackageDetail      DHLPackageDetail `json:"packageDetail"`
}

// DHLLabelResponse is the label purchase response
type DHLLabelResponse struct {
	Labels []DHLLabel `json:"labels"`
}

// DHLLabel is one issued label
type DHLLabel struct {
	PackageID    string `json:"packageId,omitempty"`
	DHLPackageID string `json:"dhlPackageId,omitempty"`
	TrackingID   string `json:"trackingId"`
	LabelData    string `json:"labelData"`
	Format       string `json:"format,omitempty"`
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// DHLTrackResponse is the GET /tracking/v4/package response
type DHLTrackResponse struct {
	Packages []DHLTrackPackage `json:"packages"`
}

// DHLTrackPackage is one parcel's tracking detail
type DHLTrackPackage struct {
	Package               DHLTrackPackageID `json:"package"`
	Events                []DHLTrackEvent   `json:"events,omitempty"`
	EstimatedDeliveryDate string            `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    string            `json:"actualDeliveryDate,omitempty"`
}

// DHLTrackPackageID identifies the tracked parcel
type DHLTrackPackageID struct {
	TrackingID string `json:"trackingId"`
}

// DHLTrackEvent is one scan in the event history
type DHLTrackEvent struct {
	Date                    string `json:"date"`
	Time                    string `json:"time,omitempty"`
	TimeZone                string `json:"timeZone,omitempty"`
	PrimaryEventDescription string `json:"primaryEventDescription"`
	Location                string `json:"location,omitempty"`
	PostalCode              string `json:"postalCode,omitempty"`
	Country                 string `json:"country,omitempty"`
}
