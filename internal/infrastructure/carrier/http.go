package carrier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/storefront/backend/internal/domain/shipping"
)

// maxResponseSize limits carrier response bodies to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// isoCountryCode normalizes the country spellings accepted by request
// validation into the two-letter code carrier APIs expect.
func isoCountryCode(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	switch c {
	case "", "USA", "UNITED STATES":
		return "US"
	default:
		return c
	}
}

// transportError classifies a failed carrier round-trip. Timeouts map to a
// distinct error so callers can tell "carrier said no" apart from "carrier
// never answered".
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shipping.ErrCarrierTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", shipping.ErrCarrierTimeout, err)
	}
	return fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
}
