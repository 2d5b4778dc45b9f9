package document

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"formbuilder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestSetHeaderImage(t *testing.T) {
	form := baseForm()
	data := append(append([]byte{}, pngHeader...), 1, 2, 3)

	out, err := SetHeaderImage(form, data, "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), out.HeaderImage)
	assert.Empty(t, form.HeaderImage)
}

func TestSetHeaderImage_RejectsOversized(t *testing.T) {
	form := baseForm()
	form.HeaderImage = "data:image/png;base64,AAAA"
	data := bytes.Repeat([]byte{0}, 3*1024*1024)

	out, err := SetHeaderImage(form, data, "image/png")
	assert.ErrorIs(t, err, ErrInputTooLarge)
	assert.Equal(t, form.HeaderImage, out.HeaderImage)
}

func TestSetHeaderImage_AcceptsExactLimit(t *testing.T) {
	data := bytes.Repeat([]byte{0}, MaxHeaderImageSize)
	_, err := SetHeaderImage(baseForm(), data, "image/jpeg")
	assert.NoError(t, err)
}

func TestSetHeaderImage_RejectsNonImage(t *testing.T) {
	_, err := SetHeaderImage(baseForm(), []byte("plain text"), "")
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestClearHeaderImage(t *testing.T) {
	form := baseForm()
	form.HeaderImage = "data:image/png;base64,AAAA"
	assert.Empty(t, ClearHeaderImage(form).HeaderImage)
	assert.NotEmpty(t, form.HeaderImage)
}

func TestSetFields_HeaderImageURI(t *testing.T) {
	good := "data:image/gif;base64," + base64.StdEncoding.EncodeToString([]byte("GIF89a"))
	out, err := SetFields(baseForm(), FormPatch{HeaderImage: ptr(good)})
	require.NoError(t, err)
	assert.Equal(t, good, out.HeaderImage)

	_, err = SetFields(baseForm(), FormPatch{HeaderImage: ptr("https://example.com/a.png")})
	assert.ErrorIs(t, err, ErrInvalidDataURI)

	big := "data:image/png;base64," + strings.Repeat("AAAA", 1024*1024)
	_, err = SetFields(baseForm(), FormPatch{HeaderImage: ptr(big)})
	assert.ErrorIs(t, err, ErrInputTooLarge)

	cleared, err := SetFields(model.Form{HeaderImage: good}, FormPatch{HeaderImage: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.HeaderImage)
}
