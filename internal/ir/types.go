package ir

// Status is a recognised record status.
type Status = string

// Status values in the default catalogue.
const (
	StatusAvailable   Status = "Available"
	StatusLimited     Status = "Limited"
	StatusInjured     Status = "Injured"
	StatusUnavailable Status = "Unavailable"
)

// DefaultStatuses is the status catalogue used when configuration supplies none.
var DefaultStatuses = []Status{StatusAvailable, StatusLimited, StatusInjured, StatusUnavailable}

// Record is the status of one subject on one day.
// Every field except Status is optional free text.
type Record struct {
	Status     string `json:"status" yaml:"status" validate:"required,csvfield"`
	InjurySite string `json:"injurySite" yaml:"injurySite,omitempty" validate:"csvfield"`
	Injury     string `json:"injury" yaml:"injury,omitempty" validate:"csvfield"`
	Severity   string `json:"severity" yaml:"severity,omitempty" validate:"csvfield"`
	Comment    string `json:"comment" yaml:"comment,omitempty" validate:"singleline"`
}

// DefaultRecord returns the record synthesised for a subject with no history.
func DefaultRecord() Record {
	return Record{Status: StatusAvailable}
}

// Entry pairs a key with its record.
type Entry struct {
	Key    Key    `json:"key" yaml:"key"`
	Record Record `json:"record" yaml:"record"`
}
