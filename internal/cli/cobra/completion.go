package cobra

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/fs"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.
By default, prints the script to stdout.
Use --output to write directly to a file.

Arguments:
  shell    target shell: bash, zsh, fish, or powershell

Installation:

  bash (with bash-completion package):
    curator completion bash > ~/.local/share/bash-completion/completions/curator

  zsh (with fpath):
    curator completion zsh > ~/.zsh/completions/_curator
    # ensure ~/.zsh/completions is in fpath before compinit

  fish:
    curator completion fish > ~/.config/fish/completions/curator.fish

After installation, restart your shell.`,
		Args:      exactArgs(1, "a shell name"),
		ValidArgs: completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
			}

			var buf bytes.Buffer
			if err := genCompletion(cmd.Root(), args[0], &buf); err != nil {
				return err
			}
			dir := filepath.Dir(output)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to create directory %s", dir), err)
			}
			if err := fs.WriteFileAtomic(afero.NewOsFs(), output, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to write %s", output), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write completion script to file instead of stdout")

	return cmd
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	var err error
	switch shell {
	case "bash":
		err = root.GenBashCompletionV2(w, true)
	case "zsh":
		err = root.GenZshCompletion(w)
	case "fish":
		err = root.GenFishCompletion(w, true)
	case "powershell":
		err = root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.New(errors.EUsage,
			fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell))
	}
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to generate completion script", err)
	}
	return nil
}
