// File: main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"speed-monitor/pkg/config"
	"speed-monitor/pkg/database"
	"speed-monitor/pkg/influx"
	"speed-monitor/pkg/monitor"
	"speed-monitor/pkg/speedtest"
)

var (
	debugFlag bool
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "speed-monitor",
	Short: "Periodic internet speed measurements stored in InfluxDB",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on LOG_LEVEL and the debug flag
		logLevel := slog.LevelInfo
		if s := os.Getenv("LOG_LEVEL"); s != "" {
			if parsed, err := config.ParseLevel(s); err == nil {
				logLevel = parsed
			}
		}
		if debugFlag {
			logLevel = slog.LevelDebug
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the measurement loop until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.FromEnv()
		if err != nil {
			logger.Error("Error loading configuration", "error", err)
			os.Exit(1)
		}

		sink := influx.NewService(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, logger)
		defer sink.Close()

		var archive monitor.Archive
		if cfg.PostgresDSN != "" {
			db, err := database.NewDB(cfg.PostgresDSN)
			if err != nil {
				logger.Error("Error connecting to archive database", "error", err)
				os.Exit(1)
			}
			defer db.Close()

			if err := db.InitSchema(context.Background()); err != nil {
				logger.Error("Error initializing archive schema", "error", err)
				os.Exit(1)
			}
			archive = db
		}

		probe := speedtest.NewClient(logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := monitor.New(probe, sink, archive,
			time.Duration(cfg.IntervalMinutes)*time.Minute, cfg.ServerID, logger)
		m.Run(ctx)
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a single speed test and print the result",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.FromEnv()
		if err != nil {
			logger.Error("Error loading configuration", "error", err)
			os.Exit(1)
		}

		probe := speedtest.NewClient(logger)
		result, err := probe.Run(cmd.Context(), cfg.ServerID)
		if err != nil {
			logger.Error("Speed test failed", "error", err)
			os.Exit(1)
		}

		fmt.Printf("Download: %.2f Mbps\n", result.DownloadSpeed)
		fmt.Printf("Upload:   %.2f Mbps\n", result.UploadSpeed)
		fmt.Printf("Ping:     %.2f ms\n", result.Ping)
		fmt.Printf("Server:   %s (%s, %s)\n", result.ServerName, result.ServerID, result.ServerCountry)

		writeFlag, _ := cmd.Flags().GetBool("write")
		if writeFlag {
			sink := influx.NewService(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, logger)
			defer sink.Close()

			if err := sink.WriteResult(cmd.Context(), result); err != nil {
				logger.Error("Failed to store speed test result", "error", err)
				os.Exit(1)
			}
			logger.Info("Result written to InfluxDB")
		}
	},
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List nearby speed test servers",
	Long: `List the speed test servers closest to this host, one per line:
server ID, name, country and distance. Use an ID as SPEEDTEST_SERVER_ID
to pin the monitor to a fixed server.`,
	Run: func(cmd *cobra.Command, args []string) {
		probe := speedtest.NewClient(logger)
		servers, err := probe.Servers(cmd.Context())
		if err != nil {
			logger.Error("Error fetching server list", "error", err)
			os.Exit(1)
		}

		for _, s := range servers {
			fmt.Printf("%-8s %-32s %-16s %.2f km\n", s.ID, s.Name, s.Country, s.Distance)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent results from the Postgres archive",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.FromEnv()
		if err != nil {
			logger.Error("Error loading configuration", "error", err)
			os.Exit(1)
		}
		if cfg.PostgresDSN == "" {
			logger.Error("POSTGRES_DSN is not configured")
			os.Exit(1)
		}

		db, err := database.NewDB(cfg.PostgresDSN)
		if err != nil {
			logger.Error("Error connecting to archive database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := db.RecentResults(cmd.Context(), limit)
		if err != nil {
			logger.Error("Error reading archived results", "error", err)
			os.Exit(1)
		}

		for _, r := range records {
			fmt.Printf("%s  down %7.2f Mbps  up %7.2f Mbps  ping %6.2f ms  %s\n",
				r.Time.Format(time.RFC3339), r.DownloadSpeed, r.UploadSpeed, r.Ping, r.ServerName)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")
	testCmd.Flags().Bool("write", false, "Also write the result to InfluxDB")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of results to show")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
