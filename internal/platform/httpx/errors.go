// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// ErrorRule maps a domain sentinel to a problem response.
type ErrorRule struct {
	Target error
	Status int
	Title  string
	// Details optionally extracts field-level errors for the problem body.
	Details func(error) any
}

// RespondError maps domain errors to HTTP responses using RFC7807. The first
// rule whose Target matches via errors.Is wins; unmatched errors become a 500
// without detail.
func RespondError(w http.ResponseWriter, err error, rules ...ErrorRule) {
	for _, rule := range rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		problem := ProblemDetail{Title: rule.Title, Status: rule.Status, Detail: err.Error()}
		if rule.Details != nil {
			problem.Errors = rule.Details(err)
		}
		WriteProblem(w, problem)
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
