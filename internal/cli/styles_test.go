package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		format func(string) string
		name   string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: SuccessIcon},
		{name: "error", format: FormatError, icon: ErrorIcon},
		{name: "warning", format: FormatWarning, icon: WarningIcon},
		{name: "info", format: FormatInfo, icon: InfoIcon},
		{name: "title", format: FormatTitle, icon: CoinIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("saldo message")
			assert.Contains(t, out, "saldo message")
			assert.Contains(t, out, tt.icon)
		})
	}
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Resumo", "linha um\nlinha dois")

	assert.Contains(t, out, "Resumo")
	assert.Contains(t, out, "linha um")
	assert.Contains(t, out, "linha dois")
	assert.Greater(t, strings.Count(out, "\n"), 2, "boxed output spans multiple lines")
}

func TestNewProgressBar(t *testing.T) {
	var buf syncBuffer
	bar := NewProgressBar(3, "Reconciling commitments", &buf)

	for i := 0; i < 3; i++ {
		assert.NoError(t, bar.Add(1))
	}

	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "3/3")
}
