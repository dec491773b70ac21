package forms

import (
	"net/url"

	"modpanel/models"
)

type CommandForm struct {
	Name     string `form:"name" validate:"required,max=200"`
	Meaning  string `form:"meaning" validate:"required,max=200"`
	MinLevel string `form:"min_level" validate:"required,permlevel"`
	Active   bool   `form:"active"`
}

// NewCommandForm returns the defaults shown on an empty form.
func NewCommandForm() CommandForm {
	return CommandForm{MinLevel: string(models.LevelEveryone), Active: true}
}

func ParseCommandForm(values url.Values) CommandForm {
	f := CommandForm{
		Name:     text(values, "name"),
		Meaning:  text(values, "meaning"),
		MinLevel: text(values, "min_level"),
		Active:   checkbox(values, "active"),
	}
	if f.MinLevel == "" {
		f.MinLevel = string(models.LevelEveryone)
	}
	return f
}

// CommandNames is the uniqueness check the command form needs.
type CommandNames interface {
	CommandExists(channelID int64, name string) (bool, error)
}

// Validate checks field constraints and that the name is free in the channel.
func (f CommandForm) Validate(channelID int64, names CommandNames) (Errors, error) {
	errs := check(f)
	if _, invalid := errs["name"]; invalid {
		return errs, nil
	}

	exists, err := names.CommandExists(channelID, f.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		errs.Add("name", DuplicateCommandMessage)
	}
	return errs, nil
}

const DuplicateCommandMessage = "Ya existe un comando con este nombre en el canal."

func (f CommandForm) Request(channelID int64) models.CreateCommandRequest {
	return models.CreateCommandRequest{
		ChannelID: channelID,
		Name:      f.Name,
		Meaning:   f.Meaning,
		MinLevel:  models.PermissionLevel(f.MinLevel),
		Active:    f.Active,
	}
}
