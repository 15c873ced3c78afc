package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures. Every failure out of the client is
// one of these; nothing is swallowed untyped.
type ErrorKind int

const (
	// KindNetwork covers transport failures and non-2xx responses.
	KindNetwork ErrorKind = iota
	// KindParse covers unexpected response shapes.
	KindParse
	// KindNoData means the provider answered but carried no usable rows
	// for the requested slot.
	KindNoData
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindNoData:
		return "no-data"
	default:
		return "unknown"
	}
}

// FetchError is the typed failure returned by the client.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("weather fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func networkError(err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Err: err}
}

func parseError(err error) *FetchError {
	return &FetchError{Kind: KindParse, Err: err}
}

func noDataError(format string, args ...any) *FetchError {
	return &FetchError{Kind: KindNoData, Err: fmt.Errorf(format, args...)}
}

// IsNoData reports whether err is a FetchError of kind KindNoData.
func IsNoData(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindNoData
}
