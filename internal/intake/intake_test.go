package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain url", input: "https://example.com", want: "https://example.com"},
		{name: "kept unchanged", input: " https://example.com/ ", want: " https://example.com/ "},
		{name: "no scheme", input: "example.com", want: "example.com"},
		{name: "empty", input: "", wantErr: ErrEmptyURL},
		{name: "whitespace only", input: " \t\n", wantErr: ErrEmptyURL},
		{name: "too long", input: "https://" + strings.Repeat("a", MaxURLLength), wantErr: ErrURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
