package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/orchestra/internal/deployment"
)

type showOptions struct {
	statePath  string
	jsonOutput bool
}

func newShowCmd(app *AppContext) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the node-by-node state of a saved deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.statePath, "state", "s", "", "path to the deployment state written by deploy")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "output state as JSON")
	cmd.MarkFlagRequired("state") //nolint:errcheck

	return cmd
}

func runShow(cmd *cobra.Command, app *AppContext, opts *showOptions) error {
	snapshot, err := readState(opts.statePath)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	return renderShowTable(cmd, snapshot)
}

func renderShowTable(cmd *cobra.Command, snapshot *deployment.Serialized) error {
	out := cmd.OutOrStdout()

	bold := plainHeading
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style := lipgloss.NewStyle().Bold(true)
		bold = func(s string) string { return style.Render(s) }
	}

	fmt.Fprintf(out, "%s %s\n", bold("Deployment:"), snapshot.Name)
	fmt.Fprintf(out, "%s   %s\n", bold("Status:"), snapshot.Status)
	fmt.Fprintf(out, "%s     %s\n\n", bold("Path:"), snapshot.Path)

	for _, n := range snapshot.Nodes {
		fmt.Fprintf(out, "%s (provisioned: %t)\n", bold(n.Name), n.Provisioned)
		fmt.Fprintf(out, "  properties:         %v\n", n.Properties)
		fmt.Fprintf(out, "  attributes:         %v\n", n.Attributes)
		fmt.Fprintf(out, "  runtime properties: %v\n", n.RuntimeProperties)
	}

	return nil
}
