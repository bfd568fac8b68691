package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zlnvch/seodash/service"
)

func TestValidateHostname(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		wantErr  string
	}{
		{"Valid", "example.com", ""},
		{"Subdomain", "shop.example.co.uk", ""},
		{"Empty", "", "host is required"},
		{"No Dot", "localhost", "host must contain a dot"},
		{"IPv6", "::1", "host must contain a dot"},
		{"IPv6 With Dot", "::ffff:1.2.3.4", "host must not contain colons"},
		{"IPv4", "192.168.0.1", "host must not be an IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateHostname("siteUrl", tt.hostname)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSiteURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{"Valid", "https://example.com/services", "https://example.com/services", ""},
		{"Strips Fragment", "https://example.com/#top", "https://example.com/", ""},
		{"Trims Space", "  http://example.com  ", "http://example.com", ""},
		{"Empty", "", "", "is required"},
		{"FTP", "ftp://example.com", "", "must use http or https"},
		{"Credentials", "https://user:pw@example.com", "", "must not contain credentials"},
		{"Port", "https://example.com:8443", "", "must not contain a port"},
		{"IP", "http://10.0.0.1", "", "host must not be an IP address"},
		{"Localhost", "http://localhost", "", "host must contain a dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.ValidateSiteURL("siteUrl", tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestValidateDomain(t *testing.T) {
	domain, err := service.ValidateDomain("domain", " WWW.Example.com ")
	assert.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	_, err = service.ValidateDomain("domain", "https://example.com")
	assert.ErrorContains(t, err, "must not contain protocol")

	_, err = service.ValidateDomain("domain", "example.com/path")
	assert.ErrorContains(t, err, "must be a bare domain")
}

func TestValidationErrorNamesField(t *testing.T) {
	_, err := service.ValidateSiteURL("siteUrl", "ftp://example.com")

	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "siteUrl", verr.Field)
	assert.Equal(t, "siteUrl: must use http or https", err.Error())
}
