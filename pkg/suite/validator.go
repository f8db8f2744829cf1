package suite

import "fmt"

// ValidationError is a problem found in a check file.
type ValidationError struct {
	Field   string
	Message string
	Index   int // -1 if not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("checks[%d].%s: %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate returns every problem found in f: missing or duplicate
// IDs, conditions that cannot be built, dependencies outside the
// file and dependency cycles.
func Validate(f *File) []ValidationError {
	var errs []ValidationError

	if f.Version == "" {
		errs = append(errs, ValidationError{
			Field: "version", Message: "version is required", Index: -1,
		})
	}

	defs := make(map[ID]*Definition, len(f.Checks))
	for i := range f.Checks {
		d := &f.Checks[i]
		switch {
		case d.ID == "":
			errs = append(errs, ValidationError{
				Field: "id", Message: "check ID is required", Index: i,
			})
		case defs[d.ID] != nil:
			errs = append(errs, ValidationError{
				Field: "id", Message: fmt.Sprintf("duplicate ID: %s", d.ID), Index: i,
			})
		default:
			defs[d.ID] = d
		}

		if _, err := d.compile(); err != nil {
			errs = append(errs, ValidationError{
				Field: "condition", Message: err.Error(), Index: i,
			})
		}
	}

	unknown := false
	for i := range f.Checks {
		d := &f.Checks[i]
		for _, dep := range d.Dependencies {
			if _, ok := defs[dep]; !ok {
				unknown = true
				errs = append(errs, ValidationError{
					Field:   "dependencies",
					Message: fmt.Sprintf("unknown check: %s", dep),
					Index:   i,
				})
			}
		}
	}

	// Unknown dependencies would be reported as a cycle too.
	if !unknown {
		if _, err := topologicalSort(defs); err != nil {
			errs = append(errs, ValidationError{
				Field: "dependencies", Message: err.Error(), Index: -1,
			})
		}
	}
	return errs
}
