package fetcher

import "fmt"

// NetworkError reports a failed download: either a non-2xx HTTP status or a
// transport-level failure (DNS, refused connection, dropped body). It is the
// only error class the batch layer recovers from; everything else is fatal.
type NetworkError struct {
	URL        string
	StatusCode int // 0 for transport-level failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("downloading %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("downloading %s: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
