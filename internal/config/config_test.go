package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cf-upload/internal/control"
)

const sample = `
settle_delay: 1500
dictionary:
  input-placeholder-file-size-error: "Max 1 kb please"
fields:
  - name: name
    tag: input
    type: text
    placeholder: "What's your name?"
  - name: cv
    tag: input
    type: file
    attributes:
      cf-max-size: "1024"
  - name: color
    tag: select
    options: [red, green]
`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, time.Duration(cfg.SettleDelay))
	assert.Equal(t, "Max 1 kb please", cfg.Dictionary["input-placeholder-file-size-error"])
	require.Len(t, cfg.Fields, 3)

	assert.Equal(t, control.KindText, cfg.Fields[0].Kind())
	assert.Equal(t, control.KindFile, cfg.Fields[1].Kind())
	assert.Equal(t, control.KindSelect, cfg.Fields[2].Kind())

	tag := cfg.Fields[1].ControlTag()
	limit, set, err := control.ParseMaxFileSize(tag)
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, int64(1024), limit)
}

func TestParse_DurationString(t *testing.T) {
	cfg, err := Parse(strings.NewReader("settle_delay: 3s\nfields: [{name: f, type: file}]\n"))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.SettleDelay))
}

func TestParse_DefaultsSettleDelay(t *testing.T) {
	cfg, err := Parse(strings.NewReader("fields: [{name: f, type: file}]\n"))
	require.NoError(t, err)
	assert.Equal(t, control.DefaultSettleDelay, time.Duration(cfg.SettleDelay))
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no fields":    "settle_delay: 1s\n",
		"no name":      "fields: [{type: file}]\n",
		"duplicate":    "fields: [{name: a}, {name: a}]\n",
		"bad max size": "fields: [{name: a, type: file, attributes: {cf-max-size: big}}]\n",
		"bad duration": "settle_delay: soon\nfields: [{name: a}]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Fields, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_SingleUploadField(t *testing.T) {
	cfg := Default(2048)
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Fields, 1)
	assert.Equal(t, control.KindFile, cfg.Fields[0].Kind())
	assert.Equal(t, "2048", cfg.Fields[0].Attributes[control.AttrMaxSize])

	assert.Nil(t, Default(0).Fields[0].Attributes)
}

func TestFileField(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	f, ok := cfg.FileField()
	require.True(t, ok)
	assert.Equal(t, "cv", f.Name)
	assert.Equal(t, "1024", f.Attributes[control.AttrMaxSize])

	_, ok = (&Config{Fields: []Field{{Name: "n", Type: control.KindText}}}).FileField()
	assert.False(t, ok)
}
