package save

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/service/builder"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type GroupCreateProvider interface {
	builder.Backend
}

type Request struct {
	Name string `json:"name"`
	// Select adds the group to the open form and selects it instead of
	// reloading the group list.
	Select bool `json:"select"`
}

type Response struct {
	response.Response
	Message   string   `json:"message,omitempty"`
	GroupName string   `json:"group_name,omitempty"`
	Groups    []string `json:"groups,omitempty"`
}

func SaveGroup(log *slog.Logger, provider GroupCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.group.SaveGroup"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("Invalid JSON")
			response.BadRequest(w, r, "invalid JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		b := builder.New(provider, session.FromContext(r.Context()), rec, rec, log)

		var err error
		if req.Select {
			err = b.ConfirmAddGroup(ctx, req.Name)
		} else {
			err = b.AddGroup(ctx, req.Name)
		}

		if err != nil {
			resp, status := response.Fail(rec, err)
			response.JSON(w, r, status, Response{Response: resp, Message: b.AddGroupMessage})
			return
		}

		resp := response.OK(rec)
		resp.Status = "created"
		render.JSON(w, r, Response{
			Response:  resp,
			Message:   b.AddGroupMessage,
			GroupName: b.GroupName,
			Groups:    b.Groups(),
		})
	}
}
