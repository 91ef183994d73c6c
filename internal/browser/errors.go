package browser

import "fmt"

// NavigationError reports that the target page could not be loaded or
// never rendered its navigator. It is usually transient.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
