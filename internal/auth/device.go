package auth

import (
	"crypto/sha256"
	"fmt"

	"github.com/mssola/useragent"
)

// DescribeClient turns a raw User-Agent string into a short human-readable
// descriptor ("Chrome on Mac OS X") for the failed-attempt report.
func DescribeClient(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Client"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()

	if browser == "" && os == "" {
		return "Unknown Client"
	}
	if browser == "" {
		return os
	}
	if os == "" {
		return browser
	}
	return fmt.Sprintf("%s on %s", browser, os)
}

// DeviceFingerprint hashes IP and User-Agent into a stable identifier for
// audit correlation.
func DeviceFingerprint(ipAddress, userAgentString string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", ipAddress, userAgentString)))
	return fmt.Sprintf("%x", hash)[:32]
}
