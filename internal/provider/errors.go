package provider

import "fmt"

// ConfigurationError reports a vendor that cannot be used as configured,
// typically missing credentials. It is fatal to the request.
type ConfigurationError struct {
	Vendor string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Vendor, e.Reason)
}

// StatusError is a non-success HTTP answer from a vendor API.
type StatusError struct {
	Vendor     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API status %d: %s", e.Vendor, e.StatusCode, e.Body)
}
