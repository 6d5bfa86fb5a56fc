package score

import (
	"strings"
	"time"

	"github.com/modelaudit/trustgate/pkg/meta"
)

const (
	licenseTagPrefix     = "license:"
	incompatibleScore    = 0.4
	maxReadmeLicenseScan = 200 // lines
)

// Permissive licenses compatible with redistribution.
var compatibleLicenses = map[string]bool{
	"mit":          true,
	"apache-2.0":   true,
	"bsd-2-clause": true,
	"bsd-3-clause": true,
	"isc":          true,
	"unlicense":    true,
	"cc0-1.0":      true,
	"lgpl-2.1":     true,
	"openrail":     true,
}

// Copyleft or restricted licenses: usable artifact, limited redistribution.
var incompatibleLicenses = map[string]bool{
	"gpl-2.0":     true,
	"gpl-3.0":     true,
	"agpl-3.0":    true,
	"cc-by-nc-4.0": true,
	"proprietary": true,
}

// LicenseMetric classifies the artifact license against fixed compatible
// and incompatible sets. Absence scores 0.0.
type LicenseMetric struct {
	metricInfo
}

func NewLicenseMetric() *LicenseMetric {
	return &LicenseMetric{metricInfo{name: "license", weight: defaultWeight}}
}

func (m *LicenseMetric) Compute(snap *meta.Snapshot, _ meta.Category) Value {
	defer m.measure(time.Now())

	token := extractLicense(snap)
	if token == "" {
		return Value{Score: 0.0}
	}

	token = strings.ToLower(strings.TrimSpace(token))
	switch {
	case compatibleLicenses[token]:
		return Value{Score: 1.0}
	case incompatibleLicenses[token]:
		return Value{Score: incompatibleScore}
	}
	return Value{Score: 0.0}
}

// extractLicense resolves the license token through the priority chain:
// direct field, "license:" tags, then a README "license:" line.
func extractLicense(snap *meta.Snapshot) string {
	if lic := snap.Str(meta.KeyLicense); lic != "" {
		return lic
	}

	for _, tag := range snap.StrList(meta.KeyTags) {
		if rest, ok := strings.CutPrefix(strings.ToLower(tag), licenseTagPrefix); ok {
			return rest
		}
	}

	readme := snap.Str(meta.KeyReadme)
	if readme == "" {
		return ""
	}
	lines := strings.Split(readme, "\n")
	if len(lines) > maxReadmeLicenseScan {
		lines = lines[:maxReadmeLicenseScan]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		if idx := strings.Index(lower, licenseTagPrefix); idx >= 0 {
			token := strings.TrimSpace(lower[idx+len(licenseTagPrefix):])
			if cut := strings.IndexAny(token, " \t,;"); cut > 0 {
				token = token[:cut]
			}
			if token != "" {
				return token
			}
		}
	}
	return ""
}
