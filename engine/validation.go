package engine

import (
	"errors"
	"fmt"
	"strings"

	"fairplayServer/game"

	"github.com/go-playground/validator/v10"
)

// validationError flattens validator output into one ErrInvalidInput.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", game.ErrInvalidInput, err)
	}

	var msgs []string
	for _, fe := range errs {
		field := fe.Field()
		if ns := fe.Namespace(); ns != "" {
			if i := strings.Index(ns, "."); i >= 0 {
				field = ns[i+1:]
			} else {
				field = ns
			}
		}

		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", field, fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be %s %s", field, fe.ActualTag(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of [%s]", field, fe.Param()))
		case "unique":
			msgs = append(msgs, fmt.Sprintf("field %s must not contain duplicates", field))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", game.ErrInvalidInput, strings.Join(msgs, ", "))
}
