package carrier

import "encoding/xml"

// ---------------------------------------------------------------------------
// Rate request (domestic)
// ---------------------------------------------------------------------------

// USPSRateRequest is the RateV4 XML request envelope
type USPSRateRequest struct {
	XMLName  xml.Name          `xml:"RateV4Request"`
	UserID   string            `xml:"USERID,attr"`
	Revision string            `xml:"Revision"`
	Packages []USPSRatePackage `xml:"Package"`
}

// USPSRatePackage is one parcel in a RateV4 request
type USPSRatePackage struct {
	ID             string `xml:"ID,attr"`
	Service        string `xml:"Service"`
	ZipOrigination string `xml:"ZipOrigination"`
	ZipDestination string `xml:"ZipDestination"`
	Pounds         int    `xml:"Pounds"`
	Ounces         int    `xml:"Ounces"`
	Container      string `xml:"Container"`
	Size           string `xml:"Size"`
	Width          string `xml:"Width,omitempty"`
	Length         string `xml:"Length,omitempty"`
	Height         string `xml:"Height,omitempty"`
	Girth          string `xml:"Girth,omitempty"`
	Machinable     string `xml:"Machinable"`
}

// ---------------------------------------------------------------------------
// Rate request (international)
// ---------------------------------------------------------------------------

// USPSIntlRateRequest is the IntlRateV2 XML request envelope
type USPSIntlRateRequest struct {
	XMLName  xml.Name              `xml:"IntlRateV2Request"`
	UserID   string                `xml:"USERID,attr"`
	Revision string                `xml:"Revision"`
	Packages []USPSIntlRatePackage `xml:"Package"`
}

// USPSIntlRatePackage is one parcel in an IntlRateV2 request
type USPSIntlRatePackage struct {
	ID              string `xml:"ID,attr"`
	Pounds          int    `xml:"Pounds"`
	Ounces          int    `xml:"Ounces"`
	Machinable      string `xml:"Machinable"`
	MailType        string `xml:"MailType"`
	ValueOfContents string `xml:"ValueOfContents"`
	Country         string `xml:"Country"`
	Container       string `xml:"Container"`
	Width           string `xml:"Width,omitempty"`
	Length          string `xml:"Length,omitempty"`
	Height          string `xml:"Height,omitempty"`
	Girth           string `xml:"Girth,omitempty"`
	OriginZip       string `xml:"OriginZip"`
}

// ---------------------------------------------------------------------------
// Rate responses
// ---------------------------------------------------------------------------

// USPSError is the embedded error element USPS returns at the top level or
// inside an individual Package
type USPSError struct {
	Number      string `xml:"Number"`
	Description string `xml:"Description"`
}

// USPSRateResponse is the RateV4 XML response envelope
type USPSRateResponse struct {
	XMLName  xml.Name                  `xml:"RateV4Response"`
	Packages []USPSRateResponsePackage `xml:"Package"`
}

// USPSRateResponsePackage is one parcel's quote set. A package that failed
// carries an Error element instead of Postage entries.
type USPSRateResponsePackage struct {
	ID      string        `xml:"ID,attr"`
	Error   *USPSError    `xml:"Error"`
	Postage []USPSPostage `xml:"Postage"`
}

// USPSPostage is one service quote for a package
type USPSPostage struct {
	ClassID     string `xml:"CLASSID,attr"`
	MailService string `xml:"MailService"`
	Rate        string `xml:"Rate"`
}

// USPSIntlRateResponse is the IntlRateV2 XML response envelope
type USPSIntlRateResponse struct {
	XMLName  xml.Name                      `xml:"IntlRateV2Response"`
	Packages []USPSIntlRateResponsePackage `xml:"Package"`
}

// USPSIntlRateResponsePackage is one parcel's international quote set
type USPSIntlRateResponsePackage struct {
	ID       string            `xml:"ID,attr"`
	Error    *USPSError        `xml:"Error"`
	Services []USPSIntlService `xml:"Service"`
}

// USPSIntlService is one international service quote
type USPSIntlService struct {
	ID             string `xml:"ID,attr"`
	Postage        string `xml:"Postage"`
	SvcDescription string `xml:"SvcDescription"`
}

// ---------------------------------------------------------------------------
// Label (eVS)
// ---------------------------------------------------------------------------

// USPSLabelRequest is the eVS XML label request envelope
type USPSLabelRequest struct {
	XMLName      xml.Name `xml:"eVSRequest"`
	UserID       string   `xml:"USERID,attr"`
	Option       string   `xml:"Option"`
	ImageType    string   `xml:"ImageType"`
	FromName     string   `xml:"FromName"`
	FromFirm     string   `xml:"FromFirm"`
	FromAddress1 string   `xml:"FromAddress1"`
	FromAddress2 string   `xml:"FromAddress2"`
	FromCity     string   `xml:"FromCity"`
	FromState    string   `xml:"FromState"`
	FromZip5     string   `xml:"FromZip5"`
	FromPhone    string   `xml:"FromPhone"`
	ToName       string   `xml:"ToName"`
	ToFirm       string   `xml:"ToFirm"`
	ToAddress1   string   `xml:"ToAddress1"`
	ToAddress2   string   `xml:"ToAddress2"`
	ToCity       string   `xml:"ToCity"`
	ToState      string   `xml:"ToState"`
	ToZip5       string   `xml:"ToZip5"`
	ToPhone      string   `xml:"ToPhone"`
	WeightInOz   int      `xml:"WeightInOunces"`
	ServiceType  string   `xml:"ServiceType"`
	Width        string   `xml:"Width,omitempty"`
	Length       string   `xml:"Length,omitempty"`
	Height       string   `xml:"Height,omitempty"`
	Machinable   string   `xml:"Machinable"`
	CustomerRef  string   `xml:"CustomerRefNo,omitempty"`
	InsuredValue string   `xml:"InsuredAmount,omitempty"`
}

// USPSLabelResponse is the eVS XML label response envelope
type USPSLabelResponse struct {
	XMLName       xml.Name `xml:"eVSResponse"`
	BarcodeNumber string   `xml:"BarcodeNumber"`
	LabelImage    string   `xml:"LabelImage"`
	PostnetZip5   string   `xml:"Zip5"`
	Postage       string   `xml:"Postage"`
}

// ---------------------------------------------------------------------------
// Tracking (TrackV2)
// ---------------------------------------------------------------------------

// USPSTrackRequest is the TrackV2 field request envelope
type USPSTrackRequest struct {
	XMLName xml.Name      `xml:"TrackFieldRequest"`
	UserID  string        `xml:"USERID,attr"`
	TrackID []USPSTrackID `xml:"TrackID"`
}

// USPSTrackID is one tracking number in a TrackV2 request
type USPSTrackID struct {
	ID string `xml:"ID,attr"`
}

// USPSTrackResponse is the TrackV2 XML response envelope
type USPSTrackResponse struct {
	XMLName   xml.Name        `xml:"TrackResponse"`
	TrackInfo []USPSTrackInfo `xml:"TrackInfo"`
}

// USPSTrackInfo is one tracking number's event history
type USPSTrackInfo struct {
	ID           string           `xml:"ID,attr"`
	Error        *USPSError       `xml:"Error"`
	TrackSummary *USPSTrackEvent  `xml:"TrackSummary"`
	TrackDetail  []USPSTrackEvent `xml:"TrackDetail"`
	ExpectedDate string           `xml:"ExpectedDeliveryDate"`
}

// USPSTrackEvent is one scan event
type USPSTrackEvent struct {
	Event        string `xml:"Event"`
	EventDate    string `xml:"EventDate"`
	EventTime    string `xml:"EventTime"`
	EventCity    string `xml:"EventCity"`
	EventState   string `xml:"EventState"`
	EventZIPCode string `xml:"EventZIPCode"`
	EventCountry string `xml:"EventCountry"`
}
