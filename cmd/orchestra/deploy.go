package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/orchestra/internal/deployment"
)

type deployOptions struct {
	templatePath string
	statePath    string
	inputs       []string
	name         string
	rollback     bool
}

func newDeployCmd(app *AppContext) *cobra.Command {
	opts := &deployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a topology template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "path to the topology template")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "deployment", "name for this deployment context")
	cmd.Flags().StringVarP(&opts.statePath, "state", "s", "", "path to write the deployment state to")
	cmd.Flags().StringArrayVar(&opts.inputs, "input", nil, "bind a template input, key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.rollback, "rollback", false, "enable rollback mode (skip destructive events on unprovisioned nodes)")
	cmd.MarkFlagRequired("template") //nolint:errcheck

	return cmd
}

func runDeploy(cmd *cobra.Command, app *AppContext, opts *deployOptions) error {
	inputs, err := parseInputs(opts.inputs)
	if err != nil {
		return err
	}

	dc, err := deployment.New(opts.name, opts.templatePath, inputs, opts.rollback, app.Registry, app.Logger)
	if err != nil {
		return err
	}

	deployErr := dc.Deploy(context.Background())

	if opts.statePath != "" {
		if err := writeState(dc, opts.statePath); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", dc.Status())
	return deployErr
}

func writeState(dc *deployment.Context, path string) error {
	snapshot, err := dc.Serialize()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
