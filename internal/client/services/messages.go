package services

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/useraccounts/internal/client/api"
)

// UpdateFailureMessage turns a failed profile update into text for the
// edit screen. Errors that are not request errors pass through as is.
func UpdateFailureMessage(err error) string {
	if err == nil {
		return ""
	}
	re, ok := api.AsRequestError(err)
	if !ok {
		return err.Error()
	}
	msg := strings.ToLower(re.Message)
	switch {
	case strings.Contains(msg, "already taken"), strings.Contains(msg, "unique"):
		return "That username is already taken."
	case re.Kind == api.KindHTTP && re.StatusCode == http.StatusBadRequest:
		return "Invalid input (birthday must be YYYY-MM-DD)."
	default:
		return re.Message
	}
}
