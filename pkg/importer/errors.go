package importer

import "errors"

// Error kinds. Every error returned by Import matches exactly one of these with errors.Is.
var (
	ErrIO                = errors.New("file unreadable")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrStructural        = errors.New("structural error")
	ErrEmptyResult       = errors.New("no valid player data")
	ErrSizeLimitExceeded = errors.New("size limit exceeded")
)

// ImportError carries a caller-facing message together with its kind and underlying cause
type ImportError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *ImportError) Error() string {
	return e.Msg
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newImportError(kind error, msg string, cause error) *ImportError {
	return &ImportError{Kind: kind, Msg: msg, Err: cause}
}
