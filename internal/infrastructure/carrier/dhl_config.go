package carrier

import "errors"

// DHLConfig holds configuration for the DHL eCommerce REST API
type DHLConfig struct {
	// ClientID is the OAuth client ID from the DHL developer portal
	ClientID string
	// ClientSecret is the OAuth client secret
	ClientSecret string
	// PickupAccount is the DHL pickup account number
	PickupAccount string
	// DistributionCenter is the DHL distribution center code (e.g. USDFW1)
	DistributionCenter string
	// APIBaseURL is the base URL for the DHL API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// DHLProductionAPIURL is the production API endpoint
	DHLProductionAPIURL = "https://api.dhlecs.com"
	// DHLSandboxAPIURL is the sandbox API endpoint
	DHLSandboxAPIURL = "https://api-sandbox.dhlecs.com"
)

// Errors for DHL configuration
var (
	ErrDHLConfigMissingClientID      = errors.New("dhl: client ID is required")
	ErrDHLConfigMissingClientSecret  = errors.New("dhl: client secret is required")
	ErrDHLConfigMissingPickupAccount = errors.New("dhl: pickup account is required")
)

// NewDHLConfig creates a new DHL configuration with defaults
func NewDHLConfig(clientID, clientSecret, pickupAccount string) *DHLConfig {
	return &DHLConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		PickupAccount:  pickupAccount,
		APIBaseURL:     DHLProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// Validate validates the DHL configuration
func (c *DHLConfig) Validate() error {
	if c.ClientID == "" {
		return ErrDHLConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrDHLConfigMissingClientSecret
	}
	if c.PickupAccount == "" {
		return ErrDHLConfigMissingPickupAccount
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = DHLSandboxAPIURL
		} else {
			c.APIBaseURL = DHLProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
