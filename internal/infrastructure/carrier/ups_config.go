package carrier

import "errors"

// UPSConfig holds configuration for the UPS REST API
type UPSConfig struct {
	// ClientID is the OAuth client ID from the UPS developer portal
	ClientID string
	// ClientSecret is the OAuth client secret
	ClientSecret string
	// AccountNumber is the UPS shipper account number
	AccountNumber string
	// APIBaseURL is the base URL for the UPS API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// UPSProductionAPIURL is the production API endpoint
	UPSProductionAPIURL = "https://onlinetools.ups.com"
	// UPSSandboxAPIURL is the customer integration environment endpoint
	UPSSandboxAPIURL = "https://wwwcie.ups.com"
)

// Errors for UPS configuration
var (
	ErrUPSConfigMissingClientID      = errors.New("ups: client ID is required")
	ErrUPSConfigMissingClientSecret  = errors.New("ups: client secret is required")
	ErrUPSConfigMissingAccountNumber = errors.New("ups: account number is required")
)

// NewUPSConfig creates a new UPS configuration with defaults
func NewUPSConfig(clientID, clientSecret, accountNumber string) *UPSConfig {
	return &UPSConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		AccountNumber:  accountNumber,
		APIBaseURL:     UPSProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// Validate validates the UPS configuration
func (c *UPSConfig) Validate() error {
	if c.ClientID == "" {
		return ErrUPSConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrUPSConfigMissingClientSecret
	}
	if c.AccountNumber == "" {
		return ErrUPSConfigMissingAccountNumber
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = UPSSandboxAPIURL
		} else {
			c.APIBaseURL = UPSProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
