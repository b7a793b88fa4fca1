// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared outbound client (auth service, profile sync).
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
