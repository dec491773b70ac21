package models

import "time"

type NoteType string

const (
	NoteGeneral    NoteType = "GENERAL"
	NoteRule       NoteType = "RULE"
	NoteIncident   NoteType = "INCIDENT"
	NoteReminder   NoteType = "REMINDER"
	NoteViewerInfo NoteType = "VIEWER_INFO"
)

var NoteTypes = []NoteType{NoteGeneral, NoteRule, NoteIncident, NoteReminder, NoteViewerInfo}

func (t NoteType) Label() string {
	switch t {
	case NoteGeneral:
		return "General"
	case NoteRule:
		return "Regla"
	case NoteIncident:
		return "Incidente"
	case NoteReminder:
		return "Recordatorio"
	case NoteViewerInfo:
		return "Info de viewer"
	default:
		return string(t)
	}
}

type Note struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channel_id"`
	UserID    string    `json:"user_id,omitempty"` // empty for anonymous notes
	Author    string    `json:"author,omitempty"`
	Type      NoteType  `json:"type"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Tag       string    `json:"tag,omitempty"`
	Important bool      `json:"important"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle falls back to the start of the body for untitled notes.
func (n *Note) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	runes := []rune(n.Body)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return n.Body
}

type CreateNoteRequest struct {
	ChannelID int64
	UserID    string
	Type      NoteType
	Title     string
	Body      string
	Tag       string
	Important bool
}
