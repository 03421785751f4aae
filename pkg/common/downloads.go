package common

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DownloadTimeout is the timeout for downloading a remote profile
const DownloadTimeout = 10 * time.Second

// SupportedContentTypes lists the content types accepted for remote profiles
var SupportedContentTypes = []string{
	"text/",              // All text/* types
	"application/yaml",   // YAML
	"application/x-yaml", // Alternative YAML
	"application/json",   // JSON is valid YAML
	"application/octet-stream",
}

// FetchURLText downloads url and returns its body, refusing non-text content.
func FetchURLText(url string) ([]byte, error) {
	client := &http.Client{
		Timeout: DownloadTimeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP request returned non-success status: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// isTextContentType checks if a Content-Type header represents a text format
func isTextContentType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return true
	}

	for _, supported := range SupportedContentTypes {
		if supported == contentType || (strings.HasSuffix(supported, "/") && strings.HasPrefix(contentType, supported)) {
			return true
		}
	}

	return false
}
