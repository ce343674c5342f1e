package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/orchestra/internal/deployment"
	"github.com/alexisbeaulieu97/orchestra/internal/orchestrator"
)

type planOptions struct {
	templatePath string
	inputs       []string
	name         string
}

func newPlanCmd(app *AppContext) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve a topology template and print its deployment order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "path to the topology template")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "deployment", "name for this deployment context")
	cmd.Flags().StringArrayVar(&opts.inputs, "input", nil, "bind a template input, key=value (repeatable)")
	cmd.MarkFlagRequired("template") //nolint:errcheck

	return cmd
}

func runPlan(cmd *cobra.Command, app *AppContext, opts *planOptions) error {
	inputs, err := parseInputs(opts.inputs)
	if err != nil {
		return err
	}

	ctx, err := deployment.New(opts.name, opts.templatePath, inputs, false, app.Registry, app.Logger)
	if err != nil {
		return err
	}

	plan, err := ctx.DeploymentPlan()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	heading := plainHeading
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style := lipgloss.NewStyle().Bold(true).Underline(true)
		heading = func(s string) string { return style.Render(s) }
	}

	fmt.Fprintln(out, heading("Prerequisites"))
	for _, name := range plan.Order {
		deps := dependenciesOf(name, plan.Prereqs[name])
		if len(deps) == 0 {
			fmt.Fprintf(out, "  %s\n", name)
			continue
		}
		fmt.Fprintf(out, "  %s <- %v\n", name, deps)
	}

	fmt.Fprintln(out, heading("Deployment order"))
	for i, name := range orchestrator.GlobalOrder(plan) {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}

	return nil
}

func plainHeading(s string) string { return s }

// dependenciesOf strips name's own entry from its Plan.Prereqs list (which
// is self-first) for display purposes.
func dependenciesOf(name string, prereqs []string) []string {
	deps := make([]string, 0, len(prereqs))
	for _, p := range prereqs {
		if p != name {
			deps = append(deps, p)
		}
	}
	return deps
}
