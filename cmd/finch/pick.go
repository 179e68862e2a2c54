package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The pick commands drive the shell side of the file-pick broker. The real
// shell process uses the same endpoints; these exist for development and
// for scripting the dialog in integration tests.

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interact with pending file-pick requests",
}

var pickNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Wait for the next pending pick request and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req struct {
			ID     string   `json:"id"`
			Filter []string `json:"filter"`
		}
		if err := apiGet("/v1/picks/next", &req); err != nil {
			return err
		}
		fmt.Printf("%s\t%v\n", req.ID, req.Filter)
		return nil
	},
}

var pickResolveCmd = &cobra.Command{
	Use:   "resolve <id> <path>",
	Short: "Answer a pending pick request with a file path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{"path": args[1]}
		return apiPost("/v1/picks/"+args[0], payload, nil)
	},
}

var pickCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Answer a pending pick request as cancelled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{"cancelled": true}
		return apiPost("/v1/picks/"+args[0], payload, nil)
	},
}

func init() {
	pickCmd.AddCommand(pickNextCmd)
	pickCmd.AddCommand(pickResolveCmd)
	pickCmd.AddCommand(pickCancelCmd)
	rootCmd.AddCommand(pickCmd)
}
