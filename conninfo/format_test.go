package conninfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var sample = List{
	{KeyIPAddress, "203.0.113.9"},
	{"accept", "*/*"},
	{"user-agent", "curl/8.0"},
	{"host", "ifconfig.example"},
	{KeyVersion, "HTTP/1.1"},
	{KeyMethod, "GET"},
}

func TestList_Lines(t *testing.T) {
	expected := "ip_address: 203.0.113.9\n" +
		"accept: */*\n" +
		"user-agent: curl/8.0\n" +
		"host: ifconfig.example\n" +
		"version: HTTP/1.1\n" +
		"method: GET\n"

	assert.Equal(t, expected, sample.Lines())
	assert.Equal(t, "", List{}.Lines())
}

func TestList_JSON(t *testing.T) {
	body, err := sample.JSON()
	require.NoError(t, err)

	assert.Equal(t, `{"ip_address":"203.0.113.9","accept":"*/*","user-agent":"curl/8.0","host":"ifconfig.example","version":"HTTP/1.1","method":"GET"}`, string(body))
	assert.True(t, gjson.ValidBytes(body))
}

func TestList_JSON_Escaping(t *testing.T) {
	list := List{{KeyIPAddress, "::1"}, {"x.odd*key", `say "hi"`}}

	body, err := list.JSON()
	require.NoError(t, err)

	assert.Equal(t, `{"ip_address":"::1","x.odd*key":"say \"hi\""}`, string(body))
}

func TestList_JSON_Empty(t *testing.T) {
	body, err := List{}.JSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestList_Labeled(t *testing.T) {
	labels := sample.Labeled()

	require.Len(t, labels, len(sample))
	assert.Equal(t, Label{Key: KeyIPAddress, Label: "IP Address", Value: "203.0.113.9", Primary: true}, labels[0])
	assert.Equal(t, Label{Key: "user-agent", Label: "User Agent", Value: "curl/8.0"}, labels[2])
	assert.Equal(t, "Method", labels[len(labels)-1].Label)

	for _, l := range labels[1:] {
		assert.False(t, l.Primary)
	}
}

func TestList_FormatsAgree(t *testing.T) {
	body, err := sample.JSON()
	require.NoError(t, err)

	var jsonKeys []string
	gjson.ParseBytes(body).ForEach(func(key, _ gjson.Result) bool {
		jsonKeys = append(jsonKeys, key.String())
		return true
	})

	var lineKeys []string
	for _, line := range strings.Split(strings.TrimSuffix(sample.Lines(), "\n"), "\n") {
		lineKeys = append(lineKeys, line[:strings.Index(line, ": ")])
	}

	var labelKeys []string
	for _, l := range sample.Labeled() {
		labelKeys = append(labelKeys, l.Key)
	}

	assert.Equal(t, sample.Keys(), jsonKeys)
	assert.Equal(t, sample.Keys(), lineKeys)
	assert.Equal(t, sample.Keys(), labelKeys)
}

func TestList_Get(t *testing.T) {
	v, ok := sample.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "ifconfig.example", v)

	_, ok = sample.Get("server")
	assert.False(t, ok)
}
