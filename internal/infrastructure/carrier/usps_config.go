package carrier

import "errors"

// USPSConfig holds configuration for the USPS Web Tools API
type USPSConfig struct {
	// UserID is the Web Tools user ID issued by USPS
	UserID string
	// APIBaseURL is the base URL for the Web Tools endpoint
	APIBaseURL string
	// IsSandbox indicates if this is the staging environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// USPSProductionAPIURL is the production Web Tools endpoint
	USPSProductionAPIURL = "https://secure.shippingapis.com/ShippingAPI.dll"
	// USPSSandboxAPIURL is the staging Web Tools endpoint
	USPSSandboxAPIURL = "https://stg-secure.shippingapis.com/ShippingAPI.dll"
)

// ErrUSPSConfigMissingUserID is returned when the Web Tools user ID is absent
var ErrUSPSConfigMissingUserID = errors.New("usps: user ID is required")

// NewUSPSConfig creates a new USPS configuration with defaults
func NewUSPSConfig(userID string) *USPSConfig {
	return &USPSConfig{
		UserID:         userID,
		APIBaseURL:     USPSProductionAPIURL,
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// Validate validates the USPS configuration
func (c *USPSConfig) Validate() error {
	if c.UserID == "" {
		return ErrUSPSConfigMissingUserID
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = USPSSandboxAPIURL
		} else {
			c.APIBaseURL = USPSProductionAPIURL
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
