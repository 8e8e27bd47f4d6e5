// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/nativeflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("nativeflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nativeflow - compiles declarative dataframe workflows into native artifacts.

Usage:
  nativeflow [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a single .hcl workflow file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Path to the workflow file or directory.")
	wFlag := flagSet.String("w", "", "Path to the workflow file or directory (shorthand).")
	partitionFlag := flagSet.Int("partition", 0, "Partition id this cycle processes. Folded into Snapshot output paths.")
	outFlag := flagSet.String("out", "", "Write the generated source to this path instead of stdout.")
	compileFlag := flagSet.Bool("compile", false, "Compile the generated source through the configured compiler command.")
	compilerCmdFlag := flagSet.String("compiler-cmd", "", "Compiler command for --compile, e.g. 'g++ -O2 -shared -fPIC'.")
	workDirFlag := flagSet.String("work-dir", "", "Directory for intermediate source files. Defaults to the current directory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *workflowFlag != "" {
		path = *workflowFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	if *partitionFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid partition: must be non-negative"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var compilerArgv []string
	if *compilerCmdFlag != "" {
		compilerArgv = strings.Fields(*compilerCmdFlag)
	}
	if *compileFlag && len(compilerArgv) == 0 {
		return nil, false, &ExitError{Code: 2, Message: "--compile requires --compiler-cmd"}
	}

	return &app.Config{
		WorkflowPath: path,
		PartitionID:  *partitionFlag,
		OutPath:      *outFlag,
		Compile:      *compileFlag,
		CompilerArgv: compilerArgv,
		WorkDir:      *workDirFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}, false, nil
}
