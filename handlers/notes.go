package handlers

import (
	"net/http"

	"modpanel/forms"
	"modpanel/metrics"
	"modpanel/middleware"
	"modpanel/models"

	"go.uber.org/zap"
)

type NoteHandler struct {
	base
}

func NewNoteHandler(d Deps) *NoteHandler {
	return &NoteHandler{base: newBase(d)}
}

type noteFormData struct {
	Form   forms.NoteForm
	Errors forms.Errors
	Types  []models.NoteType
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		h.renderNoChannels(w, r)
		return
	}

	notes, err := h.store.ListNotes(channel.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.render(w, "notes", h.page(r, "Notas", channel, notes))
}

func (h *NoteHandler) Add(w http.ResponseWriter, r *http.Request) {
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
		h.render(w, "note_form", h.page(r, "Nueva nota", channel, noteFormData{
			Form:  forms.NewNoteForm(),
			Types: models.NoteTypes,
		}))
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := forms.ParseNoteForm(r.PostForm)
	if errs := form.Validate(); !errs.Valid() {
		h.render(w, "note_form", h.page(r, "Nueva nota", channel, noteFormData{
			Form:   form,
			Errors: errs,
			Types:  models.NoteTypes,
		}))
		return
	}

	note, err := h.store.CreateNote(form.Request(channel.ID, middleware.GetUserID(r)))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.metrics.RecordCreated(metrics.EntityNote)
	h.logger.Info("note created", zap.Int64("note_id", note.ID), zap.Int64("channel_id", channel.ID))

	http.Redirect(w, r, "/notas/", http.StatusFound)
}
