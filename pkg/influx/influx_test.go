package influx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"speed-monitor/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPointFromResult(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &models.SpeedTestResult{
		Timestamp:     ts,
		DownloadSpeed: 100.5,
		UploadSpeed:   50.2,
		Ping:          25.7,
		ServerID:      "12345",
		ServerName:    "Test Server",
		ServerCountry: "US",
	}

	p := pointFromResult(result)

	if p.Name() != "internet_speed" {
		t.Errorf("measurement = %q, want %q", p.Name(), "internet_speed")
	}
	if !p.Time().Equal(ts) {
		t.Errorf("time = %v, want %v", p.Time(), ts)
	}

	wantTags := []struct {
		key   string
		value string
	}{
		{"server_id", "12345"},
		{"server_name", "Test Server"},
		{"server_country", "US"},
	}
	tags := p.TagList()
	if len(tags) != len(wantTags) {
		t.Fatalf("got %d tags, want %d", len(tags), len(wantTags))
	}
	for i, want := range wantTags {
		if tags[i].Key != want.key || tags[i].Value != want.value {
			t.Errorf("tag[%d] = (%q, %q), want (%q, %q)",
				i, tags[i].Key, tags[i].Value, want.key, want.value)
		}
	}

	wantFields := []struct {
		key   string
		value float64
	}{
		{"download_speed", 100.5},
		{"upload_speed", 50.2},
		{"ping", 25.7},
	}
	fields := p.FieldList()
	if len(fields) != len(wantFields) {
		t.Fatalf("got %d fields, want %d", len(fields), len(wantFields))
	}
	for i, want := range wantFields {
		if fields[i].Key != want.key {
			t.Errorf("field[%d] key = %q, want %q", i, fields[i].Key, want.key)
		}
		if v, ok := fields[i].Value.(float64); !ok || v != want.value {
			t.Errorf("field[%d] value = %v, want %v", i, fields[i].Value, want.value)
		}
	}
}

func TestPointFromResultUnknownServer(t *testing.T) {
	result := &models.SpeedTestResult{
		Timestamp:     time.Now(),
		DownloadSpeed: 10,
		UploadSpeed:   5,
		Ping:          30,
	}

	p := pointFromResult(result)

	for _, tag := range p.TagList() {
		if tag.Value != "unknown" {
			t.Errorf("tag %q = %q, want %q", tag.Key, tag.Value, "unknown")
		}
	}
}

// fakeWriteAPI implements api.WriteAPIBlocking for failure injection.
type fakeWriteAPI struct {
	err    error
	points []*write.Point
}

func (f *fakeWriteAPI) WriteRecord(ctx context.Context, line ...string) error { return f.err }

func (f *fakeWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	if f.err != nil {
		return f.err
	}
	f.points = append(f.points, point...)
	return nil
}

func (f *fakeWriteAPI) EnableBatching() {}

func (f *fakeWriteAPI) Flush(ctx context.Context) error { return f.err }

func TestWriteResult(t *testing.T) {
	fake := &fakeWriteAPI{}
	s := &Service{writeAPI: fake, logger: discardLogger()}

	result := &models.SpeedTestResult{
		Timestamp:     time.Now(),
		DownloadSpeed: 100,
		UploadSpeed:   50,
		Ping:          20,
		ServerID:      "1",
	}

	if err := s.WriteResult(context.Background(), result); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	if len(fake.points) != 1 {
		t.Fatalf("got %d points written, want 1", len(fake.points))
	}
}

func TestWriteResultError(t *testing.T) {
	fake := &fakeWriteAPI{err: errors.New("connection refused")}
	s := &Service{writeAPI: fake, logger: discardLogger()}

	err := s.WriteResult(context.Background(), &models.SpeedTestResult{Timestamp: time.Now()})
	if err == nil {
		t.Fatal("WriteResult() expected error, got nil")
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := &Service{logger: discardLogger()}

	// No client was ever created; Close must still be safe, twice.
	s.Close()
	s.Close()
}
