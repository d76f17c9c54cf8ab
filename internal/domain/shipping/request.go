package shipping

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// Validation bounds for packages. Weight is in pounds, dimensions in inches.
var (
	maxPackageWeight    = decimal.NewFromInt(150)
	maxPackageDimension = decimal.NewFromInt(108)
)

// maxPackagesPerShipment bounds the number of parcels on one label request.
const maxPackagesPerShipment = 10

// ---------------------------------------------------------------------------
// Customs
// ---------------------------------------------------------------------------

// CustomsItem is one line of a customs declaration.
type CustomsItem struct {
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	Value         decimal.Decimal `json:"value"`
	Weight        decimal.Decimal `json:"weight"`
	OriginCountry string          `json:"origin_country,omitempty"`
	TariffCode    string          `json:"tariff_code,omitempty"`
}

// CustomsDeclaration accompanies international shipments. It is optional;
// most domestic shipments have none.
type CustomsDeclaration struct {
	ContentsType        string        `json:"contents_type,omitempty"`
	ContentsExplanation string        `json:"contents_explanation,omitempty"`
	InvoiceNumber       string        `json:"invoice_number,omitempty"`
	NonDeliveryOption   string        `json:"non_delivery_option,omitempty"`
	Items               []CustomsItem `json:"items,omitempty"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// CreateShipmentRequest is a fully-typed label purchase request. Validate
// must succeed before the request reaches any adapter: label purchase is a
// billable external call and malformed input must be rejected first.
type CreateShipmentRequest struct {
	OrderID     string      `json:"order_id"`
	Carrier     CarrierCode `json:"carrier"`
	ServiceCode string      `json:"service_code"`
	// Origin is optional; the orchestrator substitutes the configured
	// ship-from address when absent
	Origin      *Address  `json:"origin,omitempty"`
	Destination Address   `json:"destination"`
	Packages    []Package `json:"packages"`

	LabelFormat LabelFormat `json:"label_format,omitempty"`
	LabelSize   LabelSize   `json:"label_size,omitempty"`

	SignatureRequired    bool                `json:"signature_required,omitempty"`
	SaturdayDelivery     bool                `json:"saturday_delivery,omitempty"`
	InsuranceAmount      *decimal.Decimal    `json:"insurance_amount,omitempty"`
	ReferenceNumber      string              `json:"reference_number,omitempty"`
	Customs              *CustomsDeclaration `json:"customs_declaration,omitempty"`
	IsReturnLabel        bool                `json:"is_return_label,omitempty"`
	PickupAccountNumber  string              `json:"pickup_account_number,omitempty"`
	BillingAccountNumber string              `json:"billing_account_number,omitempty"`
	// Metadata must be a flat string-to-string mapping
	Metadata map[string]string `json:"metadata,omitempty"`

	// rawLabelFormat/rawLabelSize carry the pre-normalization values so that
	// Validate can normalize case-insensitively
	rawLabelFormat string
	rawLabelSize   string
}

// SetRawLabelOptions records the caller-supplied label format and size prior
// to normalization. Validate normalizes them into LabelFormat/LabelSize.
func (r *CreateShipmentRequest) SetRawLabelOptions(format, size string) {
	r.rawLabelFormat = format
	r.rawLabelSize = size
}

// RateRequest asks one carrier for rate quotes.
type RateRequest struct {
	Carrier     CarrierCode `json:"carrier"`
	ServiceCode string      `json:"service_code,omitempty"`
	Origin      *Address    `json:"origin,omitempty"`
	Destination Address     `json:"destination"`
	Packages    []Package   `json:"packages"`
}

// TrackingRequest asks one carrier for the current status of a shipment.
type TrackingRequest struct {
	Carrier        CarrierCode `json:"carrier"`
	TrackingNumber string      `json:"tracking_number"`
}

// ---------------------------------------------------------------------------
// Sanitization
// ---------------------------------------------------------------------------

// sanitizeText strips content that must never reach a carrier payload:
// control characters, angle brackets and surrounding whitespace. It is
// applied uniformly to every free-text field rather than per-field, so no
// unsanitized path exists.
func sanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '<' || r == '>':
			// drop markup delimiters outright
		case r < 0x20 || r == 0x7f:
			// drop control characters
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func sanitizeAddress(a *Address) {
	a.Name = sanitizeText(a.Name)
	a.Company = sanitizeText(a.Company)
	a.AddressLine1 = sanitizeText(a.AddressLine1)
	a.AddressLine2 = sanitizeText(a.AddressLine2)
	a.City = sanitizeText(a.City)
	a.State = sanitizeText(a.State)
	a.PostalCode = sanitizeText(a.PostalCode)
	a.Country = sanitizeText(a.Country)
	a.Phone = sanitizeText(a.Phone)
}

func sanitizeCustoms(c *CustomsDeclaration) {
	c.ContentsType = sanitizeText(c.ContentsType)
	c.ContentsExplanation = sanitizeText(c.ContentsExplanation)
	c.InvoiceNumber = sanitizeText(c.InvoiceNumber)
	c.NonDeliveryOption = sanitizeText(c.NonDeliveryOption)
	for i := range c.Items {
		c.Items[i].Description = sanitizeText(c.Items[i].Description)
		c.Items[i].OriginCountry = sanitizeText(c.Items[i].OriginCountry)
		c.Items[i].TariffCode = sanitizeText(c.Items[i].TariffCode)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validationError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, message)
}

// validateAddress checks the address invariant after sanitization. The label
// names the address role ("destination" or "origin") so errors identify the
// offending field.
func validateAddress(a *Address, label string) error {
	sanitizeAddress(a)
	if a.AddressLine1 == "" {
		return validationError(fmt.Sprintf("Invalid %s address line 1", label))
	}
	if a.City == "" {
		return validationError(fmt.Sprintf("Invalid %s city", label))
	}
	if a.State == "" {
		return validationError(fmt.Sprintf("Invalid %s state", label))
	}
	if a.PostalCode == "" {
		return validationError(fmt.Sprintf("Invalid %s postal code", label))
	}
	if a.Country == "" {
		a.Country = "US"
	}
	return nil
}

// validatePackages enforces the package bounds. Errors identify the
// offending package by 1-based index and field name.
func validatePackages(packages []Package) error {
	if len(packages) == 0 {
		return validationError("At least one package is required")
	}
	if len(packages) > maxPackagesPerShipment {
		return validationError("Maximum of 10 packages allowed per shipment")
	}
	for i := range packages {
		pkg := &packages[i]
		n := i + 1
		if !pkg.Weight.IsPositive() || pkg.Weight.GreaterThan(maxPackageWeight) {
			return validationError(fmt.Sprintf("Invalid package weight for package %d", n))
		}
		dims := []struct {
			name  string
			value *decimal.Decimal
		}{
			{"length", pkg.Length},
			{"width", pkg.Width},
			{"height", pkg.Height},
		}
		for _, d := range dims {
			if d.value == nil {
				continue
			}
			if !d.value.IsPositive() || d.value.GreaterThan(maxPackageDimension) {
				return validationError(fmt.Sprintf("Invalid package %s for package %d", d.name, n))
			}
		}
		if pkg.InsuredValue != nil && pkg.InsuredValue.IsNegative() {
			return validationError(fmt.Sprintf("Invalid insured value for package %d", n))
		}
		pkg.ContentsType = sanitizeText(pkg.ContentsType)
		pkg.Description = sanitizeText(pkg.Description)
	}
	return nil
}

// Validate sanitizes and bounds-checks the request in place. It either
// leaves the request fully typed and sanitized or fails with a specific,
// field-identifying validation error. No partial application: the first
// violation aborts before any network call can be made.
func (r *CreateShipmentRequest) Validate() error {
	r.OrderID = sanitizeText(r.OrderID)
	if r.OrderID == "" {
		return validationError("Order ID is required")
	}
	if r.Carrier == "" {
		return validationError("Carrier is required")
	}
	if !r.Carrier.IsValid() {
		return validationError(fmt.Sprintf("Unsupported carrier: %s", r.Carrier))
	}
	r.ServiceCode = sanitizeText(r.ServiceCode)
	if r.ServiceCode == "" {
		return validationError("Service code is required")
	}

	if err := validateAddress(&r.Destination, "destination"); err != nil {
		return err
	}
	if r.Origin != nil {
		if err := validateAddress(r.Origin, "origin"); err != nil {
			return err
		}
	}
	if err := validatePackages(r.Packages); err != nil {
		return err
	}

	format, ok := NormalizeLabelFormat(r.rawLabelFormat)
	if !ok {
		return validationError(fmt.Sprintf("Invalid label format: %s", sanitizeText(r.rawLabelFormat)))
	}
	r.LabelFormat = format

	size, ok := NormalizeLabelSize(r.rawLabelSize)
	if !ok {
		return validationError(fmt.Sprintf("Invalid label size: %s", sanitizeText(r.rawLabelSize)))
	}
	r.LabelSize = size

	if r.InsuranceAmount != nil && r.InsuranceAmount.IsNegative() {
		return validationError("Invalid insurance amount")
	}
	r.ReferenceNumber = sanitizeText(r.ReferenceNumber)
	r.PickupAccountNumber = sanitizeText(r.PickupAccountNumber)
	r.BillingAccountNumber = sanitizeText(r.BillingAccountNumber)

	if r.Metadata != nil {
		sanitized := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			key := sanitizeText(k)
			if key == "" {
				return validationError("Invalid metadata key")
			}
			sanitized[key] = sanitizeText(v)
		}
		r.Metadata = sanitized
	}

	if r.Customs != nil {
		sanitizeCustoms(r.Customs)
	}

	return nil
}

// Validate sanitizes and bounds-checks a rate request. Rate lookups enforce
// the same address and package invariants as label purchases.
func (r *RateRequest) Validate() error {
	if r.Carrier == "" {
		return validationError("Carrier is required")
	}
	if !r.Carrier.IsValid() {
		return validationError(fmt.Sprintf("Unsupported carrier: %s", r.Carrier))
	}
	r.ServiceCode = sanitizeText(r.ServiceCode)
	if err := validateAddress(&r.Destination, "destination"); err != nil {
		return err
	}
	if r.Origin != nil {
		if err := validateAddress(r.Origin, "origin"); err != nil {
			return err
		}
	}
	return validatePackages(r.Packages)
}

// Validate checks a tracking request.
func (r *TrackingRequest) Validate() error {
	if r.Carrier == "" {
		return validationError("Carrier is required")
	}
	if !r.Carrier.IsValid() {
		return validationError(fmt.Sprintf("Unsupported carrier: %s", r.Carrier))
	}
	r.TrackingNumber = sanitizeText(r.TrackingNumber)
	if r.TrackingNumber == "" {
		return validationError("Tracking number is required")
	}
	return nil
}
