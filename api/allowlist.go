package api

import (
	"fmt"
	"net/netip"

	"github.com/gofiber/fiber/v2"
	"go4.org/netipx"
)

// newClientAllowList returns a middleware that rejects clients
// whose address is not in any of the prefixes.
func newClientAllowList(prefixes []netip.Prefix) (fiber.Handler, error) {
	var b netipx.IPSetBuilder
	for _, p := range prefixes {
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid allowed client prefix: %s", p)
		}
		b.AddPrefix(p.Masked())
	}

	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build allowed client set: %w", err)
	}

	return func(c *fiber.Ctx) error {
		addr, err := netip.ParseAddr(c.IP())
		if err != nil || !set.Contains(addr.Unmap()) {
			return c.SendStatus(fiber.StatusForbidden)
		}
		return c.Next()
	}, nil
}
