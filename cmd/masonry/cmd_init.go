package main

import (
	"github.com/spf13/cobra"

	"masonry/internal/scaffold"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create an empty OpenControl workspace",
		Long: `Create components/, standards/, certifications/ and an empty
.masonry/settings.yaml in dir (default "` + scaffold.DefaultDir + `"). An existing,
non-empty directory is left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := scaffold.DefaultDir
			if len(args) == 1 {
				dir = args[0]
			}
			if err := scaffold.Init(dir); err != nil {
				return err
			}
			a.logger.Debug("workspace created", "dir", dir)
			success(cmd.OutOrStdout(), "created workspace at %s", dir)
			return nil
		},
	}
}

func newNewCmd(a *app) *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Add a starter system or component to a workspace",
	}
	cmd.PersistentFlags().StringVarP(&dataDir, "data", "d", ".", "OpenControl workspace directory")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "system <name>",
			Short: "Write components/<name>/system.yaml",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := scaffold.NewSystem(dataDir, args[0])
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "created %s", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "component <system> <component>",
			Short: "Write components/<system>/<component>/component.yaml",
			Long: `Write a starter component.yaml with placeholder references and
verifications. The system is created too when it has no system.yaml yet.
Directory names are slugified; the name fields keep the arguments as typed.`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := scaffold.NewComponent(dataDir, args[0], args[1])
				if err != nil {
					return err
				}
				a.logger.Debug("component created", "system", args[0], "component", args[1])
				success(cmd.OutOrStdout(), "created %s", path)
				return nil
			},
		},
	)
	return cmd
}
