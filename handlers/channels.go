package handlers

import (
	"errors"
	"net/http"

	"modpanel/apperrors"
	"modpanel/channelctx"
	"modpanel/forms"
	"modpanel/metrics"
	"modpanel/models"
	"modpanel/store"

	"go.uber.org/zap"
)

type ChannelHandler struct {
	base
}

func NewChannelHandler(d Deps) *ChannelHandler {
	return &ChannelHandler{base: newBase(d)}
}

type channelsData struct {
	Channels []models.Channel
	Form     forms.ChannelForm
	Errors   forms.Errors
}

// Switch makes the channel in the path the session's active channel.
func (h *ChannelHandler) Switch(w http.ResponseWriter, r *http.Request) {
	notFound := apperrors.NewNotFoundError("Canal no encontrado.")

	id, ok := pathID(r, "channel_id")
	if !ok {
		writeError(w, h.logger, notFound)
		return
	}

	_, err := h.resolver.Switch(r.Context(), session(r), id)
	if errors.Is(err, channelctx.ErrChannelNotFound) {
		writeError(w, h.logger, notFound)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusFound)
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, forms.NewChannelForm(), nil)
}

func (h *ChannelHandler) renderList(w http.ResponseWriter, r *http.Request, form forms.ChannelForm, errs forms.Errors) {
	channels, err := h.store.ListChannels()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	current, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.render(w, "channels", h.page(r, "Canales", current, channelsData{
		Channels: channels,
		Form:     form,
		Errors:   errs,
	}))
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := forms.ParseChannelForm(r.PostForm)
	errs := form.Validate()
	if !errs.Valid() {
		h.renderList(w, r, form, errs)
		return
	}

	channel, err := h.store.CreateChannel(form.Request())
	if errors.Is(err, store.ErrDuplicate) {
		errs.Add("name", forms.DuplicateChannelMessage)
		h.renderList(w, r, form, errs)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordCreated(metrics.EntityChannel)
	h.logger.Info("channel created", zap.Int64("channel_id", channel.ID), zap.String("name", channel.Name))

	http.Redirect(w, r, "/canales/", http.StatusFound)
}

func (h *ChannelHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "channel_id")
	if !ok {
		writeError(w, h.logger, apperrors.NewNotFoundError("Canal no encontrado."))
		return
	}

	channel, err := h.store.RecomputeStats(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.logger, apperrors.NewNotFoundError("Canal no encontrado."))
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("channel stats recomputed",
		zap.Int64("channel_id", channel.ID),
		zap.Int("commands", channel.TotalCommands),
		zap.Int("active_bans", channel.TotalActiveBans),
	)

	http.Redirect(w, r, "/canales/", http.StatusFound)
}

// Toggle flips whether a channel is offered in the switcher.
func (h *ChannelHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	notFound := apperrors.NewNotFoundError("Canal no encontrado.")

	id, ok := pathID(r, "channel_id")
	if !ok {
		writeError(w, h.logger, notFound)
		return
	}

	channel, err := h.store.GetChannel(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.logger, notFound)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	err = h.store.SetChannelActive(id, !channel.Active)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.logger, notFound)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("channel toggled", zap.Int64("channel_id", id), zap.Bool("active", !channel.Active))

	http.Redirect(w, r, "/canales/", http.StatusFound)
}

func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "channel_id")
	if !ok {
		writeError(w, h.logger, apperrors.NewNotFoundError("Canal no encontrado."))
		return
	}

	err := h.store.DeleteChannel(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.logger, apperrors.NewNotFoundError("Canal no encontrado."))
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("channel deleted", zap.Int64("channel_id", id))

	http.Redirect(w, r, "/canales/", http.StatusFound)
}
