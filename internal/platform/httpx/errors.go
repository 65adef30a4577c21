package httpx

import (
	"errors"
	"net/http"

	"github.com/juku001/SellazEngine/internal/shared"
)

// RespondError maps a domain error onto the response envelope.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *shared.Error
	if errors.As(err, &apiErr) {
		Fail(w, apiErr.Code, apiErr.Message, apiErr.Fields)
		return
	}
	Fail(w, http.StatusInternalServerError, "Something went wrong.", nil)
}
