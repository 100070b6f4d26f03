package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ead",
		Short:         "EA Desktop integration: library, play time and local installs",
		Long:          "ead talks to the EA Desktop backend with a cookie-based session, keeps durable offer and play-time caches, and reconciles locally installed games against the install manifest.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newStatusCmd(app),
		newSyncCmd(app),
	)

	return rootCmd
}
