package influx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"speed-monitor/pkg/models"
)

// Service writes speed test results to an InfluxDB bucket using blocking
// (synchronous) writes, one point per result.
type Service struct {
	client    influxdb2.Client
	writeAPI  api.WriteAPIBlocking
	logger    *slog.Logger
	closeOnce sync.Once
}

func NewService(url, token, org, bucket string, logger *slog.Logger) *Service {
	client := influxdb2.NewClient(url, token)
	return &Service{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		logger:   logger,
	}
}

// WriteResult stores one result as a point in the configured bucket.
func (s *Service) WriteResult(ctx context.Context, result *models.SpeedTestResult) error {
	if err := s.writeAPI.WritePoint(ctx, pointFromResult(result)); err != nil {
		return fmt.Errorf("error writing point: %w", err)
	}

	s.logger.Info("Wrote speed test result to InfluxDB", "time", result.Timestamp)
	return nil
}

// pointFromResult builds the internet_speed point. Tag and field order is
// fixed; absent server metadata becomes the "unknown" tag value so the
// stored point never carries an empty tag.
func pointFromResult(result *models.SpeedTestResult) *write.Point {
	return influxdb2.NewPointWithMeasurement("internet_speed").
		AddTag("server_id", orUnknown(result.ServerID)).
		AddTag("server_name", orUnknown(result.ServerName)).
		AddTag("server_country", orUnknown(result.ServerCountry)).
		AddField("download_speed", result.DownloadSpeed).
		AddField("upload_speed", result.UploadSpeed).
		AddField("ping", result.Ping).
		SetTime(result.Timestamp)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Close releases the underlying HTTP client. Safe to call more than once,
// and safe even if no write ever succeeded.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		if s.client != nil {
			s.client.Close()
		}
	})
}
