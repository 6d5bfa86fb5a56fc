package registry

// QualifyThreshold is the minimum net score for an artifact to be admitted
// as qualified. Lower scores are recorded as disqualified.
const QualifyThreshold = 0.5

// Status of a registered artifact.
type Status string

const (
	StatusQualified    Status = "qualified"
	StatusDisqualified Status = "disqualified"
)

// StatusFor applies the qualification gate to a net score.
func StatusFor(netScore float64) Status {
	if netScore >= QualifyThreshold {
		return StatusQualified
	}
	return StatusDisqualified
}
