package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, release, err := openTracker(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		n := t.Len()
		if err := t.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d records\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
