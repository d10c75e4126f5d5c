package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.WarnLevel))
	require.False(t, logger.Core().Enabled(zap.InfoLevel))

	logger, err = New(Config{Level: "DEBUG", Encoding: "console"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = New(Config{Level: "silent"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"empty", Config{}, false},
		{"warning alias", Config{Level: "warning"}, false},
		{"none alias", Config{Level: "none", Encoding: "console"}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad encoding", Config{Encoding: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				_, err = New(tt.config)
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
