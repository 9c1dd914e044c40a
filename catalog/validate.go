package catalog

import "fmt"

// ValidationError reports an argument bag that does not match the
// declared shape of an operation, or an operation that does not exist.
type ValidationError struct {
	Operation string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Operation == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// NewUnknownOperationError is returned when the operation name is not
// in the catalog.
func NewUnknownOperationError(name string) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf("unknown operation: %s", name)}
}

// ValidArgs is the typed view of an argument bag that passed
// validation. Only string fields exist in the fixed catalog.
type ValidArgs struct {
	strings map[string]string
}

// String returns the validated value of a declared string field.
// Looking up a field the descriptor does not declare as required may
// return the empty string.
func (a ValidArgs) String(field string) string {
	return a.strings[field]
}

// Validate checks args against the declared shape of the named
// operation. It fails closed: unknown operation, missing required
// field, and wrong primitive type each produce a *ValidationError.
func Validate(name string, args map[string]any) (ValidArgs, *Descriptor, *ValidationError) {
	desc, ok := Lookup(name)
	if !ok {
		return ValidArgs{}, nil, NewUnknownOperationError(name)
	}

	valid := ValidArgs{strings: make(map[string]string, len(desc.Args))}
	for _, spec := range desc.Args {
		raw, present := args[spec.Name]
		if !present || raw == nil {
			if spec.Required {
				return ValidArgs{}, nil, &ValidationError{
					Operation: name,
					Reason:    fmt.Sprintf("missing required argument: %s", spec.Name),
				}
			}
			continue
		}

		switch spec.Type {
		case TypeString:
			s, ok := raw.(string)
			if !ok {
				return ValidArgs{}, nil, &ValidationError{
					Operation: name,
					Reason:    fmt.Sprintf("argument %s must be a string, got %T", spec.Name, raw),
				}
			}
			valid.strings[spec.Name] = s
		default:
			return ValidArgs{}, nil, &ValidationError{
				Operation: name,
				Reason:    fmt.Sprintf("argument %s has unsupported declared type %s", spec.Name, spec.Type),
			}
		}
	}

	return valid, desc, nil
}
