package carrier

import "errors"

// FedExConfig holds configuration for the FedEx REST API
type FedExConfig struct {
	// ClientID is the OAuth client ID from the FedEx developer portal
	ClientID string
	// ClientSecret is the OAuth client secret
	ClientSecret string
	// AccountNumber is the FedEx shipping account number
	AccountNumber string
	// APIBaseURL is the base URL for the FedEx API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// FedExProductionAPIURL is the production API endpoint
	FedExProductionAPIURL = "https://apis.fedex.com"
	// FedExSandboxAPIURL is the sandbox API endpoint
	FedExSandboxAPIURL = "https://apis-sandbox.fedex.com"
)

// Errors for FedEx configuration
var (
	ErrFedExConfigMissingClientID      = errors.New("fedex: client ID is required")
	ErrFedExConfigMissingClientSecret  = errors.New("fedex: client secret is required")
	ErrFedExConfigMissingAccountNumber = errors.New("fedex: account number is required")
)

// NewFedExConfig creates a new FedEx configuration with defaults
func NewFedExConfig(clientID, clientSecret, accountNumber string) *FedExConfig {
	return &FedExConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		AccountNumber:  accountNumber,
		APIBaseURL:     FedExProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// Validate validates the FedEx configuration
func (c *FedExConfig) Validate() error {
	if c.ClientID == "" {
		return ErrFedExConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrFedExConfigMissingClientSecret
	}
	if c.AccountNumber == "" {
		return ErrFedExConfigMissingAccountNumber
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = FedExSandboxAPIURL
		} else {
			c.APIBaseURL = FedExProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
