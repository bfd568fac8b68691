package service

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var ipv4Regex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
var zoneIdRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)
var languageCodeRegex = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2})?$`)

// ValidateHostname applies the same public-host rules to site URLs and bare
// domains: a dotted name, no IP literals, no port.
func ValidateHostname(field string, hostname string) error {
	if hostname == "" {
		return invalid(field, "host is required")
	}
	// Must contain at least one dot (blocks localhost and intranet names)
	if !strings.Contains(hostname, ".") {
		return invalid(field, "host must contain a dot")
	}
	// Must not contain colons (blocks IPv6)
	if strings.Contains(hostname, ":") {
		return invalid(field, "host must not contain colons")
	}
	if ipv4Regex.MatchString(hostname) {
		return invalid(field, "host must not be an IP address")
	}
	return nil
}

// ValidateSiteURL parses an absolute http(s) URL on a public hostname.
func ValidateSiteURL(field string, raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalid(field, "is required")
	}
	if len(raw) > 2048 {
		return nil, invalid(field, "is too long")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, invalid(field, "is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid(field, "must use http or https")
	}
	if u.User != nil {
		return nil, invalid(field, "must not contain credentials")
	}
	if u.Port() != "" {
		return nil, invalid(field, "must not contain a port")
	}
	if err := ValidateHostname(field, u.Hostname()); err != nil {
		return nil, err
	}

	u.Fragment = ""
	return u, nil
}

// ValidateDomain accepts a bare domain such as "example.com".
func ValidateDomain(field string, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "www.")
	if strings.Contains(domain, "://") {
		return "", invalid(field, "must not contain protocol")
	}
	if strings.ContainsAny(domain, "/?#") {
		return "", invalid(field, "must be a bare domain")
	}
	if err := ValidateHostname(field, domain); err != nil {
		return "", err
	}
	return domain, nil
}

func validateZoneId(zoneId string) error {
	if !zoneIdRegex.MatchString(zoneId) {
		return invalid("zoneId", "must be a 32-character hex id")
	}
	return nil
}

func validateLanguageCode(field, code string) error {
	if !languageCodeRegex.MatchString(code) {
		return invalid(field, "must be an ISO 639-1 code such as en")
	}
	return nil
}

func validateDate(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, invalid(field, "must be a YYYY-MM-DD date")
	}
	return t, nil
}

func validateText(field, value string, maxRunes int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "is required")
	}
	if utf8.RuneCountInString(value) > maxRunes {
		return "", invalid(field, "is too long")
	}
	return value, nil
}
