package main

import (
	"fmt"

	"gantt-planner-api/internal/notify"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run the deadline check once and send notices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		sent, err := notify.NewChecker(st, newSender(), cfg.NotifyDays).Run(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d notices\n", sent)
		return err
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
