package settings

// ErrorKind represents the type of a settings failure.
type ErrorKind string

const (
	// ReadFailed indicates the settings file exists but could not be read.
	ReadFailed ErrorKind = "SETTINGS_READ_FAILED"
	// ParseFailed indicates the settings file is not valid YAML for Settings.
	ParseFailed ErrorKind = "SETTINGS_PARSE_FAILED"
	// WriteFailed indicates the settings could not be encoded or written.
	WriteFailed ErrorKind = "SETTINGS_WRITE_FAILED"
	// LockFailed indicates the settings lock file could not be acquired or released.
	LockFailed ErrorKind = "SETTINGS_LOCK_FAILED"
	// UnknownKey indicates a key that does not name a setting.
	UnknownKey ErrorKind = "SETTINGS_UNKNOWN_KEY"
	// InvalidValue indicates a value that cannot be stored under its key.
	InvalidValue ErrorKind = "SETTINGS_INVALID_VALUE"
)

// Error is returned by Store and by the key accessors.
type Error struct {
	Kind ErrorKind
	Path string // settings file or key, depending on Kind
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Path
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
