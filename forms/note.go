package forms

import (
	"net/url"

	"modpanel/models"
)

type NoteForm struct {
	Type      string `form:"type" validate:"required,notetype"`
	Title     string `form:"title" validate:"max=200"`
	Body      string `form:"body" validate:"required"`
	Tag       string `form:"tag" validate:"max=50"`
	Important bool   `form:"important"`
}

func NewNoteForm() NoteForm {
	return NoteForm{Type: string(models.NoteGeneral)}
}

func ParseNoteForm(values url.Values) NoteForm {
	f := NoteForm{
		Type:      text(values, "type"),
		Title:     text(values, "title"),
		Body:      text(values, "body"),
		Tag:       text(values, "tag"),
		Important: checkbox(values, "important"),
	}
	if f.Type == "" {
		f.Type = string(models.NoteGeneral)
	}
	return f
}

func (f NoteForm) Validate() Errors {
	return check(f)
}

// Request stamps the note with its channel and optional author.
func (f NoteForm) Request(channelID int64, userID string) models.CreateNoteRequest {
	return models.CreateNoteRequest{
		ChannelID: channelID,
		UserID:    userID,
		Type:      models.NoteType(f.Type),
		Title:     f.Title,
		Body:      f.Body,
		Tag:       f.Tag,
		Important: f.Important,
	}
}
