package commands

import (
	"fmt"
	"os"
	"sort"

	"stockmon/lib/configutil"
	"stockmon/lib/serviceutil"
	"stockmon/services/stockmon"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the last persisted observation for every product.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[stockmon.Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		state := stockmon.NewStateStore(cfg.StatePath()).Load()
		if len(state.Products) == 0 {
			fmt.Println("no state recorded yet, run 'stockmon check' first")
			return
		}

		names := make([]string, 0, len(state.Products))
		for name := range state.Products {
			names = append(names, name)
		}
		sort.Strings(names)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Product", "Status", "Price", "Last Checked", "Error"})
		for _, name := range names {
			obs := state.Products[name]
			status := "Out of Stock"
			if obs.Available {
				status = "Available"
			}
			t.AppendRow(table.Row{name, status, obs.Price, obs.LastChecked, obs.Error})
		}
		t.Render()

		fmt.Printf("last run %s (run #%d, %d notifications sent so far)\n",
			state.LastRun, state.RunCount, state.NotificationsSent)
	},
}
