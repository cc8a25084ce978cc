package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by all outbound calls (CAPTCHA verify, Discord webhook).
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
