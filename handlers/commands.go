package handlers

import (
	"errors"
	"net/http"

	"modpanel/forms"
	"modpanel/metrics"
	"modpanel/models"
	"modpanel/store"

	"go.uber.org/zap"
)

type CommandHandler struct {
	base
}

func NewCommandHandler(d Deps) *CommandHandler {
	return &CommandHandler{base: newBase(d)}
}

type commandFormData struct {
	Form   forms.CommandForm
	Errors forms.Errors
	Levels []models.PermissionLevel
}

func (h *CommandHandler) Add(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, "command_form", h.page(r, "Nuevo comando", channel, commandFormData{
			Form:   forms.NewCommandForm(),
			Levels: models.PermissionLevels,
		}))
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := forms.ParseCommandForm(r.PostForm)
	errs, err := form.Validate(channel.ID, h.store)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if errs.Valid() {
		cmd, err := h.store.CreateCommand(form.Request(channel.ID))
		switch {
		case errors.Is(err, store.ErrDuplicate):
			errs.Add("name", forms.DuplicateCommandMessage)
		case err != nil:
			writeError(w, h.logger, err)
			return
		default:
			h.metrics.RecordCreated(metrics.EntityCommand)
			h.logger.Info("command created", zap.Int64("command_id", cmd.ID), zap.Int64("channel_id", channel.ID))
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	h.render(w, "command_form", h.page(r, "Nuevo comando", channel, commandFormData{
		Form:   form,
		Errors: errs,
		Levels: models.PermissionLevels,
	}))
}
