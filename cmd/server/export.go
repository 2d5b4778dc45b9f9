package main

import (
	"context"
	"os"

	"formbuilder/internal/service"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the collected responses as CSV to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, stores, err := openState(context.Background())
		if err != nil {
			return err
		}
		defer stores.Close()

		return service.NewResponsesService(state, cfg.Server.Location()).WriteCSV(os.Stdout)
	},
}
