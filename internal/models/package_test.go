package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidVersion(t *testing.T) {
	tests := []struct {
		version string
		valid   bool
	}{
		{"1.2.3", true},
		{"01.2.3", true},
		{"0.0.0", true},
		{"100.200.300", true},
		{"1.2", false},
		{"1.2.3.4", false},
		{"v1.2.3", false},
		{"1.2.3-beta", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidVersion(tt.version), tt.version)
	}
}

func TestPackageViews(t *testing.T) {
	file, url, hash := "a.txt", "/v1/applications/1/packages/2/file", "ba7816bf"
	size := int64(3)
	p := &Package{ID: 2, ApplicationID: 1, Version: "1.0.0", File: &file, URL: &url, Hash: &hash, Size: &size}

	assert.True(t, p.HasFile())
	view := p.View()
	assert.Equal(t, int64(1), view.Application.ID)
	assert.Equal(t, &url, view.URL)

	summary := p.Summary()
	assert.Equal(t, int64(2), summary.ID)
	assert.Equal(t, "1.0.0", summary.Version)

	assert.False(t, (&Package{}).HasFile())
}
