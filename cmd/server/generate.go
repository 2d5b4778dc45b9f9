package main

import (
	"encoding/json"
	"os"
	"strings"

	"formbuilder/internal/service"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate questions for a topic and print them as JSON",
	Long: `Asks Gemini for questions about the topic and prints them. The stored
form is not modified.

Example:
  formbuilder generate "Customer feedback for a coffee shop"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		generator := service.NewGeneratorService(&cfg.AI, log)
		drafts, err := generator.Generate(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(drafts)
	},
}
