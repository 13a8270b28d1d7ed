package transport

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/UnendingLoop/ImageTuner/internal/model"
	"github.com/go-playground/validator/v10"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrProcessingFailure):
		return 500
	case errors.Is(err, model.ErrSourceNotFound),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrInvalidIdentifier):
		return 404
	case errors.Is(err, model.ErrRateLimited):
		return 429
	case errors.Is(err, model.ErrMissingFile),
		errors.Is(err, model.ErrInvalidParameter),
		errors.Is(err, model.ErrTooLarge):
		return 400
	default:
		return 500
	}
}

// validationMessages - по одному сообщению на каждое нарушенное поле
func validationMessages(vErrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be between %s and %s", field, rangeMin(fe), rangeMax(fe)))
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return msgs
}

func rangeMin(fe validator.FieldError) string {
	if fe.Tag() == "gte" {
		return fe.Param()
	}
	return "0"
}

func rangeMax(fe validator.FieldError) string {
	if fe.Tag() == "lte" {
		return fe.Param()
	}
	if fe.Field() == "Rotation" {
		return "360"
	}
	return "2"
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
