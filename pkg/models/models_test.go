package models

import (
	"testing"
	"time"
)

func TestRecordFromResult(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &SpeedTestResult{
		Timestamp:     ts,
		DownloadSpeed: 100.5,
		UploadSpeed:   50.2,
		Ping:          25.7,
		ServerID:      "12345",
		ServerName:    "Test Server",
		ServerCountry: "US",
	}

	rec := RecordFromResult(result, "cycle-1")

	if rec.CycleID != "cycle-1" {
		t.Errorf("CycleID = %q, want %q", rec.CycleID, "cycle-1")
	}
	if !rec.Time.Equal(ts) {
		t.Errorf("Time = %v, want %v", rec.Time, ts)
	}
	if rec.DownloadSpeed != 100.5 || rec.UploadSpeed != 50.2 || rec.Ping != 25.7 {
		t.Errorf("values = (%v, %v, %v), want (100.5, 50.2, 25.7)",
			rec.DownloadSpeed, rec.UploadSpeed, rec.Ping)
	}
	if rec.ServerID != "12345" || rec.ServerName != "Test Server" || rec.ServerCountry != "US" {
		t.Errorf("server metadata = (%q, %q, %q)", rec.ServerID, rec.ServerName, rec.ServerCountry)
	}
	if rec.ID != 0 {
		t.Errorf("ID = %d, want 0 before insert", rec.ID)
	}
}
