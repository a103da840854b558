package constants

// RecordStatus is the canonical status for a parsed reservation record.
type RecordStatus string

// Stable values (stored verbatim in the archive and in Lark Base).
const (
	StatusNew      RecordStatus = "NEW"      // assembled, not yet persisted
	StatusStored   RecordStatus = "STORED"   // written to Lark Base
	StatusRejected RecordStatus = "REJECTED" // failed validation
	StatusFailed   RecordStatus = "FAILED"   // Lark write failed
)
