package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_ParseAllPages(t *testing.T) {
	tmpl, err := Templates(func(p string) string { return "/media/" + p })
	require.NoError(t, err)
	for _, name := range []string{
		"home.html", "signup.html", "login.html", "profile.html", "edit_profile.html",
		"search_results.html", "inbox.html", "chat.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_RenderErrorPage(t *testing.T) {
	tmpl, err := Templates(func(p string) string { return p })
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "error.html", map[string]interface{}{
		"Status":  404,
		"Message": "<not found>",
		"Errors":  map[string]string(nil),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "404")
	assert.Contains(t, buf.String(), "&lt;not found&gt;")
	assert.Contains(t, buf.String(), "/accounts/login/")
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", formatTime(time.Time{}))
	assert.NotEmpty(t, formatTime(time.Now()))
}
