package recompress

// savingsThreshold is the minimum relative size reduction that justifies
// replacing an original stream. Marginal gains are not worth the re-encode
// artifacts, and a replacement must never be larger than the original.
const savingsThreshold = 0.10

// SkipReason says why an image object was left untouched.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipExtractionFailed
	SkipBelowThreshold
	SkipAlreadyTargetFilter
)

func (r SkipReason) String() string {
	switch r {
	case SkipExtractionFailed:
		return "extraction-failed"
	case SkipBelowThreshold:
		return "below-savings-threshold"
	case SkipAlreadyTargetFilter:
		return "already-target-filter"
	}
	return "none"
}

// Decision is the outcome of gating a re-encoded stream against the original.
type Decision struct {
	Commit  bool
	Reason  SkipReason
	Savings float64
}

// Evaluate commits only when the replacement is strictly more than 10%
// smaller than the original stream.
func Evaluate(originalLen int, enc *Encoded) Decision {
	if enc == nil || originalLen <= 0 {
		return Decision{Reason: SkipBelowThreshold}
	}
	savings := 1 - float64(len(enc.Data))/float64(originalLen)
	if savings > savingsThreshold {
		return Decision{Commit: true, Savings: savings}
	}
	return Decision{Reason: SkipBelowThreshold, Savings: savings}
}
