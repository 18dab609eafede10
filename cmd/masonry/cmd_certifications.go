package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"masonry/internal/opencontrol"
)

func newCertificationsCmd(a *app) *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "certifications",
		Short: "List the certifications defined in a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opencontrol.OpenWorkspace(dataDir, opencontrol.WithLogger(a.logger))
			if err != nil {
				return err
			}
			names, err := ws.ListCertifications()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no certifications in "+ws.Dir))
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "OpenControl workspace directory")
	return cmd
}
