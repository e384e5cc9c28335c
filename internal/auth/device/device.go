// Package device turns User-Agent headers into short labels for audit trails.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Info is the parsed shape of a User-Agent header.
type Info struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// Describe parses a User-Agent header.
func Describe(userAgent string) Info {
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	if major, _, ok := strings.Cut(version, "."); ok {
		version = major
	}
	if browser != "" && version != "" {
		browser += " " + version
	}

	os := ua.OS()
	if platform := ua.Platform(); platform == "iPhone" || platform == "iPad" {
		os = platform
	}

	return Info{
		Browser: strings.TrimSpace(browser),
		OS:      strings.TrimSpace(os),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// ParseUserAgent returns a display label such as "Chrome 120 on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}
	info := Describe(userAgent)
	browser := info.Browser
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := info.OS
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
