package artifact

import (
	"context"
	"fmt"
	"os/exec"
	"slices"

	"github.com/vk/nativeflow/internal/ctxlog"
)

// ExecCompiler invokes an external compiler command on the written source
// file. The command is appended with the source path as its last argument.
type ExecCompiler struct {
	// Argv is the compiler command, e.g. {"g++", "-O2", "-shared", "-fPIC"}.
	Argv []string
}

// Compile runs the configured command against the source file and returns
// its combined output on failure.
func (c *ExecCompiler) Compile(ctx context.Context, path string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("no compiler command configured")
	}

	args := append(slices.Clone(c.Argv[1:]), path)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)

	ctxlog.FromContext(ctx).Debug("Invoking compiler.", "command", c.Argv[0], "args", args)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", c.Argv[0], err, out)
	}
	return nil
}
