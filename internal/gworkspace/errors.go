package gworkspace

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
)

// classify maps an API failure onto an apperr kind.
func classify(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return apperr.Wrap(kindOf(gerr.Code), op, id, err)
	}
	// transport failures, timeouts
	return apperr.Wrap(apperr.KindTransient, op, id, err)
}

func kindOf(status int) apperr.Kind {
	switch {
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.KindConfig
	case status == http.StatusTooManyRequests || status >= 500:
		return apperr.KindTransient
	default:
		return apperr.KindUnknown
	}
}
