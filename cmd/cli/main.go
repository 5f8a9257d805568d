package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
)

func main() {
	root := &cobra.Command{
		Use:   "netcopilot-cli",
		Short: "CLI client for the netcopilot diagnosis API",
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("NETCOPILOT_API_KEY"), "API key")

	runCmd := &cobra.Command{
		Use:   "run [command...]",
		Short: "Run a networking command and print its explanation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExecute,
	}
	root.AddCommand(runCmd)

	root.AddCommand(&cobra.Command{
		Use:   "suggest",
		Short: "List example commands for this host",
		RunE:  runSuggest,
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent executions",
		RunE:  runList,
	})

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE:  runHealth,
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
	payload := map[string]any{
		"command": strings.Join(args, " "),
	}

	body, _ := json.Marshal(payload)

	resp, err := doRequest("POST", "/api/execute", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var rejection struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(data, &rejection); err == nil {
			return fmt.Errorf("command rejected (%s): %s", rejection.Reason, rejection.Error)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var result struct {
		Explanation string   `json:"explanation"`
		Suggestions []string `json:"suggestions"`
		ExitCode    int      `json:"exitCode"`
		Source      string   `json:"source"`
		Output      string   `json:"output"`
		TimedOut    bool     `json:"timedOut"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if result.Output != "" {
		fmt.Println(result.Output)
	}
	fmt.Printf("--- explanation (%s, exit %d) ---\n", result.Source, result.ExitCode)
	fmt.Println(result.Explanation)
	for _, s := range result.Suggestions {
		fmt.Printf("  - %s\n", s)
	}
	if result.TimedOut {
		fmt.Println("note: the command timed out and was terminated")
	}
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	resp, err := doRequest("GET", "/api/suggestions", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OS          string   `json:"os"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("suggestions for %s:\n", result.OS)
	for _, s := range result.Suggestions {
		fmt.Printf("  %s\n", s)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	resp, err := doRequest("GET", "/api/executions", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var execs []struct {
		ID         string `json:"id"`
		Command    string `json:"command"`
		ExitCode   int    `json:"exit_code"`
		Status     string `json:"status"`
		DurationMS int64  `json:"duration_ms"`
		CreatedAt  string `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&execs); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	for _, e := range execs {
		fmt.Printf("%-36s  %-20s  exit=%-3d  %-20s  %dms  %s\n",
			e.ID, e.Command, e.ExitCode, e.Status, e.DurationMS, e.CreatedAt)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	resp, err := doRequest("GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	fmt.Println(strings.TrimSpace(string(data)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}

func doRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return http.DefaultClient.Do(req)
}
