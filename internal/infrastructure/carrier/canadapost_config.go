package carrier

import "errors"

// CanadaPostConfig holds configuration for the Canada Post REST API
type CanadaPostConfig struct {
	// Username is the API username from the Canada Post developer program
	Username string
	// Password is the API password
	Password string
	// CustomerNumber is the Canada Post customer number
	CustomerNumber string
	// APIBaseURL is the base URL for the Canada Post API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// CanadaPostProductionAPIURL is the production API endpoint
	CanadaPostProductionAPIURL = "https://soa-gw.canadapost.ca"
	// CanadaPostSandboxAPIURL is the development API endpoint
	CanadaPostSandboxAPIURL = "https://ct.soa-gw.canadapost.ca"
)

// Errors for Canada Post configuration
var (
	ErrCanadaPostConfigMissingUsername       = errors.New("canada_post: username is required")
	ErrCanadaPostConfigMissingPassword       = errors.New("canada_post: password is required")
	ErrCanadaPostConfigMissingCustomerNumber = errors.New("canada_post: customer number is required")
)

// NewCanadaPostConfig creates a new Canada Post configuration with defaults
func NewCanadaPostConfig(username, password, customerNumber string) *CanadaPostConfig {
	return &CanadaPostConfig{
		Username:       username,
		Password:       password,
		CustomerNumber: customerNumber,
		APIBaseURL:     CanadaPostProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Canada Post configuration
func (c *CanadaPostConfig) Validate() error {
	if c.Username == "" {
		return ErrCanadaPostConfigMissingUsername
	}
	if c.Password == "" {
		return ErrCanadaPostConfigMissingPassword
	}
	if c.CustomerNumber == "" {
		return ErrCanadaPostConfigMissingCustomerNumber
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = CanadaPostSandboxAPIURL
		} else {
			c.APIBaseURL = CanadaPostProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
