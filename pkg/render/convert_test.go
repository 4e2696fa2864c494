package render

import (
	"testing"

	"github.com/matzehuels/cptree/pkg/errors"
)

func TestConvertWithoutRsvg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)

	tests := []struct {
		name    string
		convert func() ([]byte, error)
	}{
		{"pdf", func() ([]byte, error) { return ToPDF(svg) }},
		{"png", func() ([]byte, error) { return ToPNG(svg, 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.convert(); !errors.Is(err, errors.ErrCodeUnsupported) {
				t.Errorf("err = %v, want %s", err, errors.ErrCodeUnsupported)
			}
		})
	}
}
