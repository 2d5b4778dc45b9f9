package document

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"formbuilder/internal/model"
)

// MaxHeaderImageSize is the largest accepted header image, in bytes
const MaxHeaderImageSize = 2 * 1024 * 1024

// InputTooLargeMessage is shown to the user when an upload is rejected for size
const InputTooLargeMessage = "File is too large. Please select an image under 2MB."

var (
	ErrInputTooLarge  = errors.New("header image exceeds 2MB")
	ErrNotAnImage     = errors.New("header image must be an image")
	ErrInvalidDataURI = errors.New("header image must be a base64 data URI")
)

// SetHeaderImage embeds data as an inline data URI.
// Oversized input is rejected and the form is returned unchanged.
func SetHeaderImage(form model.Form, data []byte, contentType string) (model.Form, error) {
	if len(data) > MaxHeaderImageSize {
		return form, ErrInputTooLarge
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return form, ErrNotAnImage
	}

	out := form.Clone()
	out.HeaderImage = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return out, nil
}

// ClearHeaderImage removes the header image
func ClearHeaderImage(form model.Form) model.Form {
	out := form.Clone()
	out.HeaderImage = ""
	return out
}

// checkDataURI validates a header image given as a ready-made data URI
func checkDataURI(uri string) error {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return ErrInvalidDataURI
	}
	if !strings.HasPrefix(meta, "image/") {
		return ErrNotAnImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxHeaderImageSize+2 {
		return ErrInputTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) > MaxHeaderImageSize {
		return ErrInputTooLarge
	}
	return nil
}
