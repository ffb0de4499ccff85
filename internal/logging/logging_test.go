package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		desc      string
		verbose   bool
		wantDebug bool
	}{
		{desc: "quiet by default", verbose: false, wantDebug: false},
		{desc: "verbose shows debug", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)

			logger.Debug().Msg("polling")
			logger.Warn().Msg("remote host differs")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("polling")))
			assert.Contains(t, buf.String(), "remote host differs")
			assert.NotContains(t, buf.String(), "\x1b[", "no color when not a terminal")
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, true))

	zerolog.Ctx(ctx).Debug().Str("iid", "7").Msg("merged")
	assert.Contains(t, buf.String(), "merged")
	assert.Contains(t, buf.String(), "iid=7")
}
