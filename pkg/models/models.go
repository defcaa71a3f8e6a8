package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SpeedTestResult is the outcome of one completed measurement cycle.
// Speeds are in Mbps and ping in milliseconds, all rounded to two
// decimal places. Server metadata is empty when the probe could not
// identify the server it measured against.
type SpeedTestResult struct {
	Timestamp     time.Time
	DownloadSpeed float64
	UploadSpeed   float64
	Ping          float64
	ServerID      string
	ServerName    string
	ServerCountry string
}

// SpeedTestRecord is the archived (relational) form of a result.
type SpeedTestRecord struct {
	bun.BaseModel `bun:"table:speed_test_results,alias:r"`

	ID            int64     `bun:",pk,autoincrement"`
	CycleID       string    `bun:",notnull"`
	Time          time.Time `bun:",notnull"`
	DownloadSpeed float64   `bun:",notnull"`
	UploadSpeed   float64   `bun:",notnull"`
	Ping          float64   `bun:",notnull"`
	ServerID      string
	ServerName    string
	ServerCountry string
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// RecordFromResult builds the archive row for a result.
func RecordFromResult(result *SpeedTestResult, cycleID string) *SpeedTestRecord {
	return &SpeedTestRecord{
		CycleID:       cycleID,
		Time:          result.Timestamp,
		DownloadSpeed: result.DownloadSpeed,
		UploadSpeed:   result.UploadSpeed,
		Ping:          result.Ping,
		ServerID:      result.ServerID,
		ServerName:    result.ServerName,
		ServerCountry: result.ServerCountry,
	}
}
