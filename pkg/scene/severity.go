package scene

// Severity is the level attached to a diagnostic message
type Severity int

const (
	SeverityMessage Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityMessage:
		return "message"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorHandler receives diagnostics raised by the host or by a procedural
type ErrorHandler func(severity Severity, message string)
