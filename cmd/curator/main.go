// Command curator triages the files in a directory.
package main

import (
	stderrors "errors"
	"os"

	"github.com/NielsdaWheelz/curator/internal/cli/cobra"
	"github.com/NielsdaWheelz/curator/internal/errors"
)

func main() {
	err := cobra.Execute(os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	var reported *errors.Reported
	switch opts := cobra.GetGlobalOpts(); {
	case stderrors.As(err, &reported):
		// output already written
	case opts.JSON:
		errors.PrintJSON(os.Stdout, err)
	default:
		errors.PrintWithOptions(os.Stderr, err, errors.PrintOptions{Verbose: opts.Verbose})
	}
	os.Exit(errors.ExitCode(err))
}
