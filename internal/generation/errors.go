package generation

import "errors"

// ConfigError is a user-actionable configuration problem (bad or missing
// credential, malformed request). It is never retried; Remedy tells the user
// how to fix it.
type ConfigError struct {
	Remedy string
	Err    error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "configuration error"
	}
	if e.Err == nil {
		return e.Remedy
	}
	return e.Remedy + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewConfigError(remedy string, err error) error {
	return &ConfigError{Remedy: remedy, Err: err}
}

// IsConfigError reports whether err is configuration-class anywhere in its
// chain.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Remediation returns the user-facing remedy for a configuration error, or
// empty string.
func Remediation(err error) string {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Remedy
	}
	return ""
}

// TransientError marks a failure worth retrying (overload, rate limit,
// transient 5xx, missing content in an otherwise well-formed reply).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient service error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewTransientError(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
