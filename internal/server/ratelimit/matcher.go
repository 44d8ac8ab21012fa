package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// resolve picks the limit, window and burst for a request. Health checks
// are unlimited. Endpoint overrides match on method plus exact path first,
// then by prefix for configured paths ending in "/" (which is how
// "/jobs/{id}/cancel" lands on the "/jobs/" entry). Everything else falls
// back to the default limit with burst equal to the limit.
func (c *Config) resolve(path, method string) (limit int, window time.Duration, burst int) {
	if path == "/health" && method == http.MethodGet {
		return 0, 0, 0
	}

	for i := range c.EndpointConfigs {
		ec := &c.EndpointConfigs[i]
		if ec.Method == method && ec.Path == path {
			return ec.Limit, ec.Window, ec.Burst
		}
	}
	for i := range c.EndpointConfigs {
		ec := &c.EndpointConfigs[i]
		if ec.Method == method && strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(path, ec.Path) {
			return ec.Limit, ec.Window, ec.Burst
		}
	}

	return c.DefaultLimit, c.DefaultWindow, c.DefaultLimit
}
