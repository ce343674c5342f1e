package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/orchestra/internal/deployment"
)

type undeployOptions struct {
	statePath string
	rollback  bool
}

func newUndeployCmd(app *AppContext) *cobra.Command {
	opts := &undeployOptions{}

	cmd := &cobra.Command{
		Use:   "undeploy",
		Short: "Tear down a previously deployed topology from its saved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndeploy(cmd, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.statePath, "state", "s", "", "path to the deployment state written by deploy")
	cmd.Flags().BoolVar(&opts.rollback, "rollback", false, "permit undeploy while the deployment is still running")
	cmd.MarkFlagRequired("state") //nolint:errcheck

	return cmd
}

func runUndeploy(cmd *cobra.Command, app *AppContext, opts *undeployOptions) error {
	snapshot, err := readState(opts.statePath)
	if err != nil {
		return err
	}

	dc, err := deployment.Load(snapshot, opts.rollback, app.Registry, app.Logger)
	if err != nil {
		return err
	}

	undeployErr := dc.Undeploy(context.Background())

	if err := writeState(dc, opts.statePath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", dc.Status())
	return undeployErr
}

func readState(path string) (*deployment.Serialized, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var snapshot deployment.Serialized
	if err := json.NewDecoder(f).Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
