package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finchapp/finch/internal/files"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Read and write document files",
}

var fileReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a file's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := files.NewService(nil).Read(args[0])
		if err != nil {
			return err
		}
		fmt.Print(content)
		return nil
	},
}

var fileWriteCmd = &cobra.Command{
	Use:   "write <path> [content]",
	Short: "Write a file's contents",
	Long:  "Write a file. If content is omitted, reads from stdin.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			b, err := os.ReadFile("/dev/stdin")
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			content = string(b)
		}
		return files.NewService(nil).Write(args[0], content)
	},
}

var fileExistsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Report whether a file exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(files.NewService(nil).Exists(args[0]))
		return nil
	},
}

func init() {
	fileCmd.AddCommand(fileReadCmd)
	fileCmd.AddCommand(fileWriteCmd)
	fileCmd.AddCommand(fileExistsCmd)
	rootCmd.AddCommand(fileCmd)
}
