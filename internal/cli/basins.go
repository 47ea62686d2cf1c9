package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftlake/watershed/internal/client"
)

var basinsCmd = &cobra.Command{
	Use:   "basins [name]",
	Short: "Show attractor basins",
	Long:  "List all basins with their strength and stability, or show one basin in full.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBasins,
}

func runBasins(cmd *cobra.Command, args []string) error {
	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("server not reachable; start it with `watershed serve`")
	}

	if len(args) == 1 {
		data, err := c.Get("/api/basins/" + url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(prettyJSON(data))
		return nil
	}

	data, err := c.Get("/api/basins")
	if err != nil {
		return err
	}

	var resp struct {
		Basins []struct {
			Name            string  `json:"name"`
			Strength        float64 `json:"strength"`
			Stability       float64 `json:"stability"`
			ActivationCount int     `json:"activation_count"`
			LastActivated   int64   `json:"last_activated"` // unix millis
		} `json:"basins"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode basins response: %w", err)
	}

	if len(resp.Basins) == 0 {
		fmt.Println("No basins yet. Route some memories first.")
		return nil
	}

	for _, b := range resp.Basins {
		fmt.Printf("%-20s strength %.2f  stability %.2f  activations %d  last %s\n",
			b.Name, b.Strength, b.Stability, b.ActivationCount,
			time.UnixMilli(b.LastActivated).Local().Format("2006-01-02 15:04"))
	}
	return nil
}

var (
	proposalsStatus string
	proposalsLimit  int
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List relationship proposals",
	Long:  "List extracted relationship proposals, optionally filtered by status.",
	RunE:  runProposals,
}

func init() {
	proposalsCmd.Flags().StringVarP(&proposalsStatus, "status", "s", "", "Filter by status (approved, pending_review)")
	proposalsCmd.Flags().IntVarP(&proposalsLimit, "limit", "n", 50, "Maximum number of proposals")
}

func runProposals(cmd *cobra.Command, args []string) error {
	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("server not reachable; start it with `watershed serve`")
	}

	q := url.Values{}
	if proposalsStatus != "" {
		q.Set("status", proposalsStatus)
	}
	q.Set("limit", fmt.Sprintf("%d", proposalsLimit))

	data, err := c.Get("/api/proposals?" + q.Encode())
	if err != nil {
		return err
	}

	var resp struct {
		Proposals []struct {
			Source     string  `json:"source"`
			Target     string  `json:"target"`
			Relation   string  `json:"relation_type"`
			Confidence float64 `json:"confidence"`
			Status     string  `json:"status"`
			Evidence   string  `json:"evidence"`
		} `json:"proposals"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode proposals response: %w", err)
	}

	if len(resp.Proposals) == 0 {
		fmt.Println("No proposals found.")
		return nil
	}

	for _, p := range resp.Proposals {
		fmt.Printf("[%.2f %-14s] %s -%s-> %s\n", p.Confidence, p.Status, p.Source, p.Relation, p.Target)
		if p.Evidence != "" {
			fmt.Printf("  %s\n", p.Evidence)
		}
	}
	return nil
}
