package services

import (
	"strings"

	"github.com/labstack/gommon/random"
)

const (
	licenseKeyGroups    = 4
	licenseKeyGroupSize = 8
)

// GenerateLicenseKey returns four hyphen-separated groups of eight uppercase
// hex characters drawn from crypto/rand.
func GenerateLicenseKey() string {
	groups := make([]string, licenseKeyGroups)
	for i := range groups {
		groups[i] = strings.ToUpper(random.String(licenseKeyGroupSize, random.Hex))
	}
	return strings.Join(groups, "-")
}
