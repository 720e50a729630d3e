package service

import "errors"

// outcomeOf maps an operation error onto the outcome label used by the
// product and sale operation metrics.
func outcomeOf(err error, notFound ...error) string {
	if err == nil {
		return "success"
	}
	if IsValidationError(err) {
		return "bad_request"
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return "not_found"
		}
	}
	return "error"
}
