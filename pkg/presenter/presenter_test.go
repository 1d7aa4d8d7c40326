package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithOptions(out, errOut, ColorNever), out, errOut
}

func TestError(t *testing.T) {
	t.Run("with context", func(t *testing.T) {
		p, out, errOut := newTestPresenter()
		p.Error(errors.New("boom"), "lint failed")
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "[ERROR] lint failed: boom")
	})

	t.Run("without context", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(errors.New("boom"), "")
		assert.Contains(t, errOut.String(), "[ERROR] boom")
	})

	t.Run("nil error is a no-op", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.Error(nil, "ignored")
		assert.Empty(t, errOut.String())
	})

	t.Run("shown even in quiet mode", func(t *testing.T) {
		p, _, errOut := newTestPresenter()
		p.SetQuiet(true)
		p.Error(errors.New("boom"), "")
		assert.Contains(t, errOut.String(), "boom")
	})
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("built 3 skills")
	p.Warning("long description")
	p.Info("checking")

	assert.Contains(t, out.String(), "✓ built 3 skills")
	assert.Contains(t, out.String(), "⚠ long description")
	assert.Contains(t, out.String(), "checking")
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()

	assert.Empty(t, out.String())
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Lint Results")
	assert.Contains(t, out.String(), "Lint Results\n------------\n")
}
