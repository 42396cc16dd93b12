package polygon

import (
	"net/http"
	"time"
)

// baseTransportConfig returns the HTTP transport shared by aggregate requests.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 2 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   5 * time.Minute,
	}
}
