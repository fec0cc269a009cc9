package domain

// SelectQuery filters Abstracts by tag key and/or a minimum verification
// grade. A nil TagKey selects across all buckets; a nil MinVerification
// applies no grade filter.
type SelectQuery struct {
	TagKey          *string
	MinVerification *VerificationStatus
}

// OutputGate decides whether an Abstract's grade clears a minimum bar before
// it is allowed to reach a consumer.
type OutputGate struct {
	MinStatus VerificationStatus
}

// Allow reports whether status clears the gate.
func (g OutputGate) Allow(status VerificationStatus) bool {
	return status >= g.MinStatus
}

// OutputPacket pairs an Abstract with the grade it was gated at, for
// consumers that need to know why an Abstract was (or wasn't) let through.
type OutputPacket struct {
	Abstract Abstract           `json:"abstract"`
	Status   VerificationStatus `json:"status"`
}
