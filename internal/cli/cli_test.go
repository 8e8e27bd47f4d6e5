package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional workflow path with defaults", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"workflow.hcl"}, &out)
		require.NoError(t, err)
		require.False(t, exit)

		assert.Equal(t, "workflow.hcl", cfg.WorkflowPath)
		assert.Equal(t, 0, cfg.PartitionID)
		assert.False(t, cfg.Compile)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("all flags", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{
			"--workflow", "wf.hcl",
			"--partition", "7",
			"--out", "gen.cxx",
			"--compile",
			"--compiler-cmd", "g++ -O2 -shared -fPIC",
			"--work-dir", "/tmp/work",
			"--log-format", "json",
			"--log-level", "debug",
		}, &out)
		require.NoError(t, err)
		require.False(t, exit)

		assert.Equal(t, "wf.hcl", cfg.WorkflowPath)
		assert.Equal(t, 7, cfg.PartitionID)
		assert.Equal(t, "gen.cxx", cfg.OutPath)
		assert.True(t, cfg.Compile)
		assert.Equal(t, []string{"g++", "-O2", "-shared", "-fPIC"}, cfg.CompilerArgv)
		assert.Equal(t, "/tmp/work", cfg.WorkDir)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("shorthand flag", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-w", "wf.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "wf.hcl", cfg.WorkflowPath)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("error cases", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			msg  string
		}{
			{"negative partition", []string{"--partition", "-2", "wf.hcl"}, "invalid partition"},
			{"bad log format", []string{"--log-format", "xml", "wf.hcl"}, "invalid log-format"},
			{"bad log level", []string{"--log-level", "loud", "wf.hcl"}, "invalid log-level"},
			{"compile without command", []string{"--compile", "wf.hcl"}, "--compile requires --compiler-cmd"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var out bytes.Buffer
				_, _, err := Parse(tt.args, &out)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tt.msg)
			})
		}
	})
}
