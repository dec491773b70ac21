package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxFieldBytes = 64 << 10

var errFieldTooLarge = errors.New("form field too large")

// banUpload is a ban submission read from a urlencoded or multipart body.
type banUpload struct {
	values    url.Values
	image     bytes.Buffer
	imageName string
	imageSize int64
}

// readBanUpload streams the body part by part so fields read before a
// failure are still returned alongside the error. An image larger than
// maxImage is cut at maxImage+1 bytes and left for validation to reject.
func readBanUpload(r *http.Request, maxImage int64) (*banUpload, error) {
	up := &banUpload{values: url.Values{}}

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return up, err
		}
		up.values = r.PostForm
		return up, nil
	}
	if err != nil {
		return up, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return up, nil
		}
		if err != nil {
			return up, err
		}

		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() == "":
			var b strings.Builder
			n, err := io.Copy(&b, io.LimitReader(part, maxFieldBytes+1))
			if err != nil {
				return up, err
			}
			if n > maxFieldBytes {
				return up, errFieldTooLarge
			}
			up.values.Add(name, b.String())
		case name == "image" && up.imageName == "":
			up.imageName = part.FileName()
			n, err := io.Copy(&up.image, io.LimitReader(part, maxImage+1))
			if err != nil {
				return up, err
			}
			up.imageSize = n
			if n > maxImage {
				return up, nil
			}
		}
		part.Close()
	}
}
