package instance

import (
	"os"
	"strings"
)

// EnvInstanceID overrides the identifier attached to process logs.
const EnvInstanceID = "CAEC_INSTANCE_ID"

// GetID returns the process instance identifier: CAEC_INSTANCE_ID, then the
// hostname, then "local".
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
