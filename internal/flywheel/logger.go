package flywheel

import (
	"log"
	"net/url"
	"time"
)

// LogRequest logs an API request being made.
func LogRequest(method, path string, params url.Values) {
	if len(params) > 0 {
		log.Printf("[flywheel] %s %s params=%v", method, path, params)
	} else {
		log.Printf("[flywheel] %s %s", method, path)
	}
}

// LogResponse logs an API response received.
func LogResponse(statusCode int, duration time.Duration) {
	log.Printf("[flywheel] response status=%d duration=%dms", statusCode, duration.Milliseconds())
}

// LogError logs an error from an API operation.
func LogError(operation string, err error) {
	log.Printf("[flywheel] %s error: %v", operation, err)
}
