package lint

// Severity classifies lint findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single lint finding.
type Issue struct {
	FilePath    string
	Line        int
	Severity    Severity
	Rule        string
	Message     string
	Explanation string
	Fix         string
}

// Rule checks one aspect of a content file.
type Rule interface {
	Name() string
	AppliesTo(filePath string) bool
	Check(filePath string, content []byte) ([]Issue, error)
}
