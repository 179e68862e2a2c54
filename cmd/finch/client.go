package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/finchapp/finch/internal/audit"
)

func apiClient() *http.Client {
	socketPath := defaultSocketPath()
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", socketPath)
			},
		},
	}
}

func apiGet(path string, v any) error {
	resp, err := apiClient().Get("http://finch" + path)
	if err != nil {
		return fmt.Errorf("connecting to daemon: %w (is the finch daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func apiPost(path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	resp, err := apiClient().Post("http://finch"+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("connecting to daemon: %w (is the finch daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, respBody)
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon health",
	RunE: func(cmd *cobra.Command, args []string) error {
		var report struct {
			Status    string `json:"status"`
			DataDir   string `json:"data_dir"`
			Writable  bool   `json:"writable"`
			FreeBytes uint64 `json:"free_bytes"`
			Message   string `json:"message"`
		}
		if err := apiGet("/v1/health", &report); err != nil {
			return err
		}

		fmt.Printf("Status:   %s\n", report.Status)
		fmt.Printf("Data dir: %s\n", report.DataDir)
		fmt.Printf("Writable: %v\n", report.Writable)
		if report.FreeBytes > 0 {
			fmt.Printf("Free:     %.1f GB\n", float64(report.FreeBytes)/(1<<30))
		}
		if report.Message != "" {
			fmt.Printf("Message:  %s\n", report.Message)
		}
		return nil
	},
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent audit log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("lines")
		var resp struct {
			Entries []audit.Entry `json:"entries"`
		}
		if err := apiGet("/v1/audit?n="+strconv.Itoa(n), &resp); err != nil {
			return err
		}

		if len(resp.Entries) == 0 {
			fmt.Println("No recent activity")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tTARGET\tACTOR\tERROR")
		for _, e := range resp.Entries {
			target := e.Key
			if target == "" {
				target = e.Path
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format(time.TimeOnly), e.Action, target, e.Actor, e.Error)
		}
		w.Flush()
		return nil
	},
}

func init() {
	auditCmd.Flags().IntP("lines", "n", 50, "number of entries to show")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(auditCmd)
}
