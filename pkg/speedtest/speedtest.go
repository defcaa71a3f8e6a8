package speedtest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/showwin/speedtest-go/speedtest"

	"speed-monitor/pkg/models"
)

// Client runs speed tests against speedtest.net infrastructure.
type Client struct {
	logger *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{logger: logger}
}

// Run performs one full measurement: ping, download, upload. When serverID
// is non-empty the test is pinned to that server and it is an error if the
// server is not in the fetched list; otherwise the closest available server
// is used. A fresh vendor client is created per call so no state leaks
// between cycles.
func (c *Client) Run(ctx context.Context, serverID string) (*models.SpeedTestResult, error) {
	client := speedtest.New()

	servers, err := client.FetchServerListContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server list: %w", err)
	}

	target, err := pickServer(servers, serverID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Starting speed test",
		"serverID", target.ID,
		"serverName", target.Name,
		"serverCountry", target.Country)

	if err := target.PingTestContext(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping test failed: %w", err)
	}

	c.logger.Debug("Running download test")
	if err := target.DownloadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("download test failed: %w", err)
	}

	c.logger.Debug("Running upload test")
	if err := target.UploadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("upload test failed: %w", err)
	}

	// DLSpeed/ULSpeed are byte rates; the record wants Mbps.
	return buildResult(time.Now(),
		float64(target.DLSpeed)*8,
		float64(target.ULSpeed)*8,
		target.Latency,
		target.ID, target.Name, target.Country), nil
}

// Servers returns the candidate server list, closest first.
func (c *Client) Servers(ctx context.Context) (speedtest.Servers, error) {
	servers, err := speedtest.New().FetchServerListContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server list: %w", err)
	}
	return servers, nil
}

func pickServer(servers speedtest.Servers, serverID string) (*speedtest.Server, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("no speed test servers available")
	}
	if serverID == "" {
		return servers[0], nil
	}
	for _, s := range servers {
		if s.ID == serverID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("server %s not found in server list", serverID)
}

// buildResult maps raw probe output into a result record. Throughput comes
// in as bits per second and is stored as Mbps rounded to two decimals.
func buildResult(ts time.Time, downloadBps, uploadBps float64, latency time.Duration, id, name, country string) *models.SpeedTestResult {
	return &models.SpeedTestResult{
		Timestamp:     ts,
		DownloadSpeed: round2(downloadBps / 1_000_000),
		UploadSpeed:   round2(uploadBps / 1_000_000),
		Ping:          round2(float64(latency) / float64(time.Millisecond)),
		ServerID:      id,
		ServerName:    name,
		ServerCountry: country,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
