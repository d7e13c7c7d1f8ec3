package page

import (
	"bytes"
	"strings"
	"testing"

	"github.com/johndistasio/ifconfig/conninfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var list = conninfo.List{
	{Key: conninfo.KeyIPAddress, Value: "203.0.113.9"},
	{Key: "accept-language", Value: "de-DE,de;q=0.9"},
	{Key: "user-agent", Value: "Mozilla/5.0"},
	{Key: "host", Value: "ifconfig.example"},
	{Key: conninfo.KeyVersion, Value: "HTTP/2.0"},
	{Key: conninfo.KeyMethod, Value: "GET"},
}

func render(t *testing.T, opts Options, l conninfo.List, lang string) string {
	tmpl, err := New(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Render(&buf, l, lang))

	return buf.String()
}

func TestTemplate_Render(t *testing.T) {
	out := render(t, Options{}, list, "de-DE,de;q=0.9")

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<html lang="de-DE"`)
	assert.Contains(t, out, "<title>Your IP address</title>")
	assert.Contains(t, out, "<td><h4><b>IP Address</b></h4></td>")
	assert.Contains(t, out, "<td><h4><b>203.0.113.9</b></h4></td>")
	assert.Contains(t, out, "<td>Accept Language</td>")
	assert.Contains(t, out, "curl ifconfig.example/all.json")
	assert.Contains(t, out, `<p class="response token string">version: HTTP/2.0</p>`)
	assert.Contains(t, out, "&#34;ip_address&#34;: &#34;203.0.113.9&#34;")
	assert.Contains(t, out, "p.response{")
	assert.NotContains(t, out, "ZgotmplZ")
	assert.NotContains(t, out, `rel="stylesheet" href="/`)
}

func TestTemplate_RenderOrder(t *testing.T) {
	out := render(t, Options{}, list, "")

	previous := -1
	for _, label := range []string{"IP Address", "Accept Language", "User Agent", "Host", "Version", "Method"} {
		i := strings.Index(out, label)
		require.NotEqual(t, -1, i, label)
		assert.Greater(t, i, previous, label)
		previous = i
	}
}

func TestTemplate_RenderOptions(t *testing.T) {
	out := render(t, Options{Stylesheet: "styles.min.css", Build: "v1.2.0"}, list, "")

	assert.Contains(t, out, `<link rel="stylesheet" href="/styles.min.css">`)
	assert.Contains(t, out, "Build v1.2.0.")
}

func TestTemplate_RenderEscapes(t *testing.T) {
	l := conninfo.List{
		{Key: conninfo.KeyIPAddress, Value: "198.51.100.1"},
		{Key: "user-agent", Value: "<script>alert(1)</script>"},
		{Key: conninfo.KeyVersion, Value: "HTTP/1.1"},
		{Key: conninfo.KeyMethod, Value: "GET"},
	}

	out := render(t, Options{}, l, "en")

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, out, "curl 198.51.100.1/all")
}

func TestLang(t *testing.T) {
	tests := map[string]string{
		"":                         "en",
		"*":                        "en",
		"fr":                       "fr",
		"en-US,en;q=0.9":           "en-US",
		" pt-BR ;q=0.8, en":        "pt-BR",
		`"><script>`:               "en",
		"zh-Hant-TW-x-private-tag": "zh-Hant-TW-x-private-tag",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, Lang(input), input)
	}
}
