package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftlake/watershed/internal/client"
)

var (
	routeKind    string
	routeSource  string
	routeProject string
)

var routeCmd = &cobra.Command{
	Use:   "route [content]",
	Short: "Route a memory through the engine",
	Long:  "Send content to a running watershed server for classification, basin reinforcement, and extraction.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().StringVarP(&routeKind, "kind", "k", "", "Memory kind (episodic, semantic, procedural, strategic); classified when omitted")
	routeCmd.Flags().StringVar(&routeSource, "source", "", "Source identifier for the memory")
	routeCmd.Flags().StringVar(&routeProject, "project", "", "Project identifier for the memory")
}

func runRoute(cmd *cobra.Command, args []string) error {
	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("server not reachable; start it with `watershed serve`")
	}

	body, err := json.Marshal(map[string]string{
		"content":    strings.Join(args, " "),
		"kind":       routeKind,
		"source_id":  routeSource,
		"project_id": routeProject,
	})
	if err != nil {
		return err
	}

	data, err := c.Post("/api/memories", body)
	if err != nil {
		return err
	}

	fmt.Println(prettyJSON(data))
	return nil
}
