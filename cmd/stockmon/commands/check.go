package commands

import (
	"errors"
	"log/slog"
	"time"

	"stockmon/lib/configutil"
	"stockmon/lib/notify"
	"stockmon/lib/scrapers/storefront"
	"stockmon/lib/serviceutil"
	"stockmon/lib/telemetry"
	"stockmon/services/stockmon"

	"github.com/spf13/cobra"
)

var checkVerbose *bool

func init() {
	checkVerbose = checkCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging.")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs one monitoring pass over every configured product.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[stockmon.Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if len(cfg.Products) == 0 {
			serviceutil.Fatal("failed to read config", errors.New("products list is empty"))
		}

		if err := telemetry.InitSlogWithFile(*checkVerbose, cfg.LogPath()); err != nil {
			serviceutil.Fatal("failed to open log file", err)
		}

		fetcher, err := storefront.NewClient(storefront.ClientOptions{
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize storefront client", err)
		}

		ctx := serviceutil.SignalContext()
		telemetry.InstrumentPerfStats(ctx)

		svc := stockmon.NewService(stockmon.Options{
			Products: cfg.Products,
			Fetcher:  fetcher,
			Notifiers: []notify.Notifier{
				notify.NewTelegram(cfg.Telegram),
				notify.NewEmail(cfg.Smtp),
			},
			Store: stockmon.NewStateStore(cfg.StatePath()),
			Delay: cfg.Delay(),
		})

		t1 := time.Now()
		summary := svc.Run(ctx)
		t2 := time.Now()

		slog.Info("run complete",
			"checked", summary.Checked,
			"changes", summary.Changes,
			"sent", summary.NotificationsSent,
			"failed", summary.NotificationsFailed,
			"skipped", summary.NotificationsSkipped,
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
