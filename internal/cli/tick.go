package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftlake/watershed/internal/client"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a lifecycle pass now",
	Long:  "Trigger an immediate hot-to-warm and warm-to-cold migration pass on the running server.",
	RunE:  runTick,
}

func runTick(cmd *cobra.Command, args []string) error {
	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("server not reachable; start it with `watershed serve`")
	}

	data, err := c.Post("/api/lifecycle/tick", nil)
	if err != nil {
		return err
	}

	var counts struct {
		HotToWarm  int `json:"hot_to_warm"`
		WarmToCold int `json:"warm_to_cold"`
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		return fmt.Errorf("decode tick response: %w", err)
	}

	fmt.Printf("hot -> warm: %d\nwarm -> cold: %d\n", counts.HotToWarm, counts.WarmToCold)
	return nil
}
