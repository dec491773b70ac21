package forms

import (
	"fmt"
	"net/url"
	"time"

	"modpanel/models"
)

type BanForm struct {
	Username string `form:"username" validate:"required,max=150"`
	Reason   string `form:"reason" validate:"required"`
	UnbanAt  string `form:"unban_at"`
	Notes    string `form:"notes"`

	// ImageName and ImageSize describe the optional evidence upload.
	ImageName string `form:"image" validate:"omitempty,imageext"`
	ImageSize int64  `form:"-" validate:"-"`

	unbanAt *time.Time
}

func ParseBanForm(values url.Values) BanForm {
	return BanForm{
		Username: text(values, "username"),
		Reason:   text(values, "reason"),
		UnbanAt:  text(values, "unban_at"),
		Notes:    text(values, "notes"),
	}
}

// Validate checks fields and the attachment. Unban times are read in loc.
func (f *BanForm) Validate(loc *time.Location, maxImageBytes int64) Errors {
	errs := check(*f)

	unbanAt, err := parseDateTime(f.UnbanAt, loc)
	if err != nil {
		errs.Add("unban_at", "Introduce una fecha y hora válidas.")
	}
	f.unbanAt = unbanAt

	if f.ImageName != "" && maxImageBytes > 0 && f.ImageSize > maxImageBytes {
		errs.Add("image", fmt.Sprintf("La imagen supera el máximo de %d MB.", maxImageBytes>>20))
	}
	return errs
}

// Request must be called after a successful Validate.
func (f *BanForm) Request(channelID int64, userID, image string) models.CreateBanRequest {
	return models.CreateBanRequest{
		ChannelID: channelID,
		UserID:    userID,
		Username:  f.Username,
		Reason:    f.Reason,
		UnbanAt:   f.unbanAt,
		Image:     image,
		Notes:     f.Notes,
	}
}
