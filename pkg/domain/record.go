package domain

// FileRecord describes one regular file found in the drop zone. It is built
// during the scan and discarded once its outcome is known.
type FileRecord struct {
	SourcePath  string
	Name        string
	Size        int64
	Fingerprint string
	Category    string
}

type RouteStatus int

const (
	StatusMoved RouteStatus = iota
	StatusSkippedDuplicate
	StatusSkippedInvalid
	StatusFailed
)

func (s RouteStatus) String() string {
	switch s {
	case StatusMoved:
		return "moved"
	case StatusSkippedDuplicate:
		return "skipped_duplicate"
	case StatusSkippedInvalid:
		return "skipped_invalid"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

type FailReason string

const (
	ReasonIOError          FailReason = "io_error"
	ReasonPermissionDenied FailReason = "permission_denied"
	ReasonInvalidContent   FailReason = "invalid_content"
)

// RoutingOutcome is the terminal state of exactly one FileRecord.
type RoutingOutcome struct {
	Record      FileRecord
	Destination string
	Status      RouteStatus
	Reason      FailReason
	Err         error
}

// RouteReport is the full result of one router run.
type RouteReport struct {
	Outcomes []RoutingOutcome `json:"-"`

	Moved      int `json:"moved"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
}

func (r *RouteReport) Append(o RoutingOutcome) {
	r.Outcomes = append(r.Outcomes, o)

	switch o.Status {
	case StatusMoved:
		r.Moved++
	case StatusSkippedDuplicate:
		r.Duplicates++
	case StatusSkippedInvalid:
		r.Invalid++
	case StatusFailed:
		r.Failed++
	}
}
