package handlers

import (
	"net/http"

	"modpanel/models"
)

type HomeHandler struct {
	base
}

func NewHomeHandler(d Deps) *HomeHandler {
	return &HomeHandler{base: newBase(d)}
}

type homeData struct {
	Commands []models.Command
	Bans     []models.Ban
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channel(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if channel == nil {
		h.renderNoChannels(w, r)
		return
	}

	commands, err := h.store.ListCommands(channel.ID, true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	bans, err := h.store.ListActiveBans(channel.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render(w, "index", h.page(r, channel.Name, channel, homeData{Commands: commands, Bans: bans}))
}
