package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"demo-shop/internal/scenario"
)

var (
	fireRequests int
	fireBaseURL  string
	fireTimeout  time.Duration
)

var fireCmd = &cobra.Command{
	Use:   "fire <scenario>",
	Short: "Trigger a traffic scenario on a running instance",
	Long: `fire posts to the scenario endpoint of a running demoshop instance and
prints the reply. The call blocks until the whole burst has been driven.`,
	Args: cobra.ExactArgs(1),
	RunE: runFire,
}

func init() {
	fireCmd.Flags().IntVarP(&fireRequests, "requests", "n", 0, "burst size (omit to use the scenario default)")
	fireCmd.Flags().StringVar(&fireBaseURL, "base-url", "http://localhost:8000", "address of the running service")
	fireCmd.Flags().DurationVar(&fireTimeout, "timeout", 5*time.Minute, "how long to wait for the burst to finish")
	rootCmd.AddCommand(fireCmd)
}

func runFire(cmd *cobra.Command, args []string) error {
	name := args[0]
	if _, ok := scenario.DefaultRequests[name]; !ok {
		return fmt.Errorf("unknown scenario %q (choose one of: %s)", name, strings.Join(scenarioNames(), ", "))
	}

	u := fireURL(fireBaseURL, name, fireRequests, cmd.Flags().Changed("requests"))

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: fireTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("scenario call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scenario call returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
	return nil
}

// fireURL builds the scenario endpoint URL. The requests parameter is only
// attached when the flag was set explicitly, so the server-side default stays
// in charge otherwise.
func fireURL(base, name string, requests int, explicit bool) string {
	u := strings.TrimSuffix(base, "/") + "/scenario/" + name
	if explicit {
		u += "?" + url.Values{"requests": {strconv.Itoa(requests)}}.Encode()
	}
	return u
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenario.DefaultRequests))
	for name := range scenario.DefaultRequests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
