package media

import (
	"strconv"
	"strings"
)

const (
	// MaxListLimit caps the page size a caller may request.
	MaxListLimit = 500
	// MaxDeleteRefs caps the number of references in one delete batch.
	MaxDeleteRefs = 1000

	maxQueryLength = 256
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field-level problems found at the boundary.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ValidateListQuery parses raw page/limit/q query values. Empty values fall
// back to page 1 and limit 20.
func ValidateListQuery(rawPage, rawLimit, rawQuery string) (ListParams, ValidationErrors) {
	var errs ValidationErrors
	params := ListParams{Page: defaultPage, Limit: defaultLimit, Query: strings.TrimSpace(rawQuery)}

	if rawPage = strings.TrimSpace(rawPage); rawPage != "" {
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			errs = append(errs, FieldError{Field: "page", Message: "must be a positive integer"})
		} else {
			params.Page = page
		}
	}

	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		switch {
		case err != nil || limit < 1:
			errs = append(errs, FieldError{Field: "limit", Message: "must be a positive integer"})
		case limit > MaxListLimit:
			errs = append(errs, FieldError{Field: "limit", Message: "must not exceed " + strconv.Itoa(MaxListLimit)})
		default:
			params.Limit = limit
		}
	}

	if len(params.Query) > maxQueryLength {
		errs = append(errs, FieldError{Field: "q", Message: "too long"})
	}

	return params, errs
}

// ValidateDeleteRefs checks the shape of a delete batch. Individual
// references are judged later, one by one.
func ValidateDeleteRefs(refs []string) ValidationErrors {
	var errs ValidationErrors
	switch {
	case len(refs) == 0:
		errs = append(errs, FieldError{Field: "files", Message: "at least one reference is required"})
	case len(refs) > MaxDeleteRefs:
		errs = append(errs, FieldError{Field: "files", Message: "at most " + strconv.Itoa(MaxDeleteRefs) + " references per request"})
	}
	return errs
}
