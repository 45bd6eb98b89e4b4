// Package response holds the envelope shared by the form handlers.
package response

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"reports-ui/internal/domain"
	"reports-ui/internal/ui"
)

// RequestTimeout bounds the backend calls made while serving one request.
const RequestTimeout = 30 * time.Second

const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Response carries the outcome and whatever the controller asked the user
// interface to show.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	ui.Feedback
}

func OK(rec *ui.Recorder) Response {
	return Response{Status: StatusOK, Feedback: rec.Feedback()}
}

// Fail builds the response for err and returns the HTTP status to send:
// 422 for failed checks, 502 when the backend call failed.
func Fail(rec *ui.Recorder, err error) (Response, int) {
	if domain.IsPrecondition(err) {
		return Response{Status: StatusInvalid, Error: reason(err), Feedback: rec.Feedback()}, http.StatusUnprocessableEntity
	}
	return Response{Status: StatusError, Error: "backend request failed", Feedback: rec.Feedback()}, http.StatusBadGateway
}

func reason(err error) string {
	if target := domain.Precondition(err); target != nil {
		return target.Error()
	}
	return err.Error()
}

// BadRequest answers 400 for a body that could not be decoded.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Response{Status: StatusError, Error: msg})
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
