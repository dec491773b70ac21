package forms

import (
	"net/url"

	"modpanel/models"
)

type ChannelForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Streamer    string `form:"streamer" validate:"required,max=100"`
	Description string `form:"description"`
	URL         string `form:"url" validate:"omitempty,url"`
	Color       string `form:"color" validate:"required,hexcolor"`
	Active      bool   `form:"active"`
}

func NewChannelForm() ChannelForm {
	return ChannelForm{Color: models.DefaultChannelColor, Active: true}
}

func ParseChannelForm(values url.Values) ChannelForm {
	f := ChannelForm{
		Name:        text(values, "name"),
		Streamer:    text(values, "streamer"),
		Description: text(values, "description"),
		URL:         text(values, "url"),
		Color:       text(values, "color"),
		Active:      checkbox(values, "active"),
	}
	if f.Color == "" {
		f.Color = models.DefaultChannelColor
	}
	return f
}

func (f ChannelForm) Validate() Errors {
	return check(f)
}

const DuplicateChannelMessage = "Ya existe un canal con este nombre."

func (f ChannelForm) Request() models.CreateChannelRequest {
	return models.CreateChannelRequest{
		Name:        f.Name,
		Streamer:    f.Streamer,
		Description: f.Description,
		URL:         f.URL,
		Color:       f.Color,
		Active:      f.Active,
	}
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func ParseLoginForm(values url.Values) LoginForm {
	return LoginForm{
		Username: text(values, "username"),
		Password: values.Get("password"),
	}
}

func (f LoginForm) Validate() Errors {
	return check(f)
}
