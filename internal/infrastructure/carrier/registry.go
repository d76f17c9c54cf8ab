package carrier

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// adapterFactory builds one carrier's adapter from its resolved config
type adapterFactory func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error)

// adapterFactories is the single place a new carrier is wired in. Adding a
// carrier means adding its credential keys and a factory entry; nothing in
// the orchestration layer changes.
var adapterFactories = map[shipping.CarrierCode]adapterFactory{
	shipping.CarrierUSPS: func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error) {
		uspsCfg := NewUSPSConfig(cfg.Credentials["user_id"])
		uspsCfg.IsSandbox = cfg.Sandbox
		uspsCfg.APIBaseURL = cfg.Credentials["api_base_url"]
		return NewUSPSAdapter(uspsCfg)
	},
	shipping.CarrierFedEx: func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error) {
		fedexCfg := NewFedExConfig(cfg.Credentials["client_id"], cfg.Credentials["client_secret"], cfg.Credentials["account_number"])
		fedexCfg.IsSandbox = cfg.Sandbox
		fedexCfg.APIBaseURL = cfg.Credentials["api_base_url"]
		return NewFedExAdapter(fedexCfg)
	},
	shipping.CarrierUPS: func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error) {
		upsCfg := NewUPSConfig(cfg.Credentials["client_id"], cfg.Credentials["client_secret"], cfg.Credentials["account_number"])
		upsCfg.IsSandbox = cfg.Sandbox
		upsCfg.APIBaseURL = cfg.Credentials["api_base_url"]
		return NewUPSAdapter(upsCfg)
	},
	shipping.CarrierDHL: func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error) {
		dhlCfg := NewDHLConfig(cfg.Credentials["client_id"], cfg.Credentials["client_secret"], cfg.Credentials["pickup_account"])
		dhlCfg.DistributionCenter = cfg.Credentials["distribution_center"]
		dhlCfg.IsSandbox = cfg.Sandbox
		dhlCfg.APIBaseURL = cfg.Credentials["api_base_url"]
		return NewDHLAdapter(dhlCfg)
	},
	shipping.CarrierCanadaPost: func(cfg config.CarrierConfig) (shipping.CarrierAdapter, error) {
		cpCfg := NewCanadaPostConfig(cfg.Credentials["username"], cfg.Credentials["password"], cfg.Credentials["customer_number"])
		cpCfg.IsSandbox = cfg.Sandbox
		cpCfg.APIBaseURL = cfg.Credentials["api_base_url"]
		return NewCanadaPostAdapter(cpCfg)
	},
}

// Registry implements shipping.CarrierRegistry over a static table built at
// startup. Carriers that are disabled or missing credentials are skipped at
// build time, so a Get miss means "not configured", never a partial adapter.
type Registry struct {
	adapters map[shipping.CarrierCode]shipping.CarrierAdapter
}

var _ shipping.CarrierRegistry = (*Registry)(nil)

// NewRegistry builds adapters for every enabled, fully-credentialed carrier
// in the configuration. A carrier with incomplete credentials is logged and
// skipped rather than failing startup.
func NewRegistry(resolver *CredentialResolver, log *zap.Logger) *Registry {
	registry := &Registry{
		adapters: make(map[shipping.CarrierCode]shipping.CarrierAdapter),
	}

	for _, code := range shipping.AllCarriers() {
		if !resolver.IsActive(code) {
			continue
		}

		cfg, err := resolver.Resolve(code)
		if err != nil {
			log.Warn("skipping carrier with unresolvable credentials",
				zap.String("carrier", code.String()),
				zap.Error(err))
			continue
		}

		factory, ok := adapterFactories[code]
		if !ok {
			log.Warn("no adapter factory for configured carrier",
				zap.String("carrier", code.String()))
			continue
		}

		adapter, err := factory(cfg)
		if err != nil {
			log.Warn("skipping carrier with invalid configuration",
				zap.String("carrier", code.String()),
				zap.Error(err))
			continue
		}

		registry.adapters[code] = adapter
		log.Info("registered carrier adapter",
			zap.String("carrier", code.String()),
			zap.Bool("sandbox", cfg.Sandbox))
	}

	return registry
}

// Get returns the adapter for the given carrier code
func (r *Registry) Get(carrier shipping.CarrierCode) (shipping.CarrierAdapter, error) {
	if !carrier.IsValid() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCarrierNotSupported, carrier)
	}
	adapter, ok := r.adapters[carrier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCarrierNotConfigured, carrier)
	}
	return adapter, nil
}

// List returns all registered adapters in stable carrier-code order
func (r *Registry) List() []shipping.CarrierAdapter {
	codes := make([]string, 0, len(r.adapters))
	for code := range r.adapters {
		codes = append(codes, code.String())
	}
	sort.Strings(codes)

	adapters := make([]shipping.CarrierAdapter, 0, len(codes))
	for _, code := range codes {
		adapters = append(adapters, r.adapters[shipping.CarrierCode(code)])
	}
	return adapters
}
