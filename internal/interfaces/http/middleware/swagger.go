package middleware

import (
	"net/http"
	"net/netip"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

type SwaggerConfig struct {
	Enabled bool
	// AllowedIPs takes addresses and CIDR ranges; empty allows everyone.
	AllowedIPs []string
}

// SwaggerProtection answers 404 while the docs are disabled and 403 to
// clients outside AllowedIPs. Entries that do not parse are ignored, so a
// list of only bad entries locks the docs.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	restricted := len(cfg.AllowedIPs) > 0
	allow := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		switch {
		case !cfg.Enabled:
			c.AbortWithStatusJSON(http.StatusNotFound, dto.Fail(
				dto.ErrCodeNotFound, "API documentation is not available", c.GetString(RequestIDKey)))
		case restricted && !clientAllowed(allow, c.ClientIP()):
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", c.GetString(RequestIDKey)))
		default:
			c.Next()
		}
	}
}

func parseAllowList(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				out = append(out, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}

func clientAllowed(allow []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return slices.ContainsFunc(allow, func(p netip.Prefix) bool { return p.Contains(addr) })
}
