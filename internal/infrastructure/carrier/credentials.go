// Package carrier implements the shipping.CarrierAdapter port for each
// supported carrier. Carrier-native payloads and auth schemes never leave
// this package.
package carrier

import (
	"fmt"
	"sort"

	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// requiredCredentialKeys lists the credential keys each carrier needs before
// its adapter can be constructed.
var requiredCredentialKeys = map[shipping.CarrierCode][]string{
	shipping.CarrierUSPS:       {"user_id"},
	shipping.CarrierFedEx:      {"client_id", "client_secret", "account_number"},
	shipping.CarrierUPS:        {"client_id", "client_secret", "account_number"},
	shipping.CarrierDHL:        {"client_id", "client_secret", "pickup_account"},
	shipping.CarrierCanadaPost: {"username", "password", "customer_number"},
}

// CredentialResolver resolves carrier credentials from configuration and
// verifies completeness before any adapter is built.
type CredentialResolver struct {
	carriers config.CarriersConfig
}

// NewCredentialResolver creates a resolver over the configured carriers
func NewCredentialResolver(carriers config.CarriersConfig) *CredentialResolver {
	return &CredentialResolver{carriers: carriers}
}

// IsActive reports whether a carrier is both configured and enabled
func (r *CredentialResolver) IsActive(code shipping.CarrierCode) bool {
	cfg, ok := r.carriers.Get(code.String())
	return ok && cfg.Enabled
}

// Resolve returns the carrier's config after checking that every required
// credential key is present and non-empty. Missing keys are reported
// together, sorted, so one fix round suffices.
func (r *CredentialResolver) Resolve(code shipping.CarrierCode) (config.CarrierConfig, error) {
	cfg, ok := r.carriers.Get(code.String())
	if !ok || !cfg.Enabled {
		return config.CarrierConfig{}, fmt.Errorf("%w: %s", shipping.ErrCarrierNotConfigured, code)
	}

	var missing []string
	for _, key := range requiredCredentialKeys[code] {
		if cfg.Credentials[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return config.CarrierConfig{}, fmt.Errorf("%w: %s missing %v", shipping.ErrMissingCredentials, code, missing)
	}

	return cfg, nil
}
