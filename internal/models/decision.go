package models

// Decision is the outcome of a cache validity check for one release instant.
type Decision string

const (
	// DecisionReuse means the stored entry is COMPLETE, structurally
	// compatible and still retained; serve it as-is.
	DecisionReuse Decision = "REUSE"

	// DecisionRebuild means no trustworthy entry exists for the target
	// release (missing, incomplete, failed, or fingerprint mismatch).
	DecisionRebuild Decision = "REBUILD"

	// DecisionEvictAndRebuild means the entry is structurally valid but
	// outside its retention window; its data must be removed before the
	// rebuild.
	DecisionEvictAndRebuild Decision = "EVICT_AND_REBUILD"

	// DecisionNoDataYet means no release is available yet at the current
	// time; nothing is read or written.
	DecisionNoDataYet Decision = "NO_DATA_YET"

	// DecisionEvict is used by the eviction sweep for entries past their
	// retention window that are not the current rebuild target.
	DecisionEvict Decision = "EVICT"
)
