package report

import (
	"testing"
	"time"
)

func TestAggregate_Partitions(t *testing.T) {
	outcomes := []Outcome{
		{URL: "https://example.com/a", Status: StatusHealthy, StatusCode: 200},
		{URL: "https://example.com/b", Status: StatusBroken, StatusCode: 404},
		{URL: "https://example.com/c", Status: StatusUnresolved, Error: "parse href"},
		{URL: "https://example.com/d", Status: StatusHealthy, StatusCode: 204},
		{URL: "https://example.com/e", Status: StatusBroken, Error: "timeout"},
	}

	rep := Aggregate("https://example.com/", outcomes)

	if rep.BaseURL != "https://example.com/" {
		t.Errorf("BaseURL = %q", rep.BaseURL)
	}
	if rep.TotalLinks != 5 {
		t.Errorf("TotalLinks = %d, want 5", rep.TotalLinks)
	}
	if rep.HealthyCount != 2 {
		t.Errorf("HealthyCount = %d, want 2", rep.HealthyCount)
	}
	if rep.UnresolvedCount != 1 {
		t.Errorf("UnresolvedCount = %d, want 1", rep.UnresolvedCount)
	}
	if len(rep.BrokenLinks) != 2 {
		t.Fatalf("len(BrokenLinks) = %d, want 2", len(rep.BrokenLinks))
	}
}

// BrokenLinks must preserve the first-seen order of the input sequence so
// reports are reproducible regardless of completion timing.
func TestAggregate_BrokenOrderIsInputOrder(t *testing.T) {
	outcomes := []Outcome{
		{URL: "https://example.com/3rd", Status: StatusBroken},
		{URL: "https://example.com/ok", Status: StatusHealthy},
		{URL: "https://example.com/1st", Status: StatusBroken},
		{URL: "https://example.com/2nd", Status: StatusBroken},
	}

	rep := Aggregate("https://example.com/", outcomes)

	want := []string{"https://example.com/3rd", "https://example.com/1st", "https://example.com/2nd"}
	for i, u := range want {
		if rep.BrokenLinks[i].URL != u {
			t.Errorf("BrokenLinks[%d] = %s, want %s", i, rep.BrokenLinks[i].URL, u)
		}
	}
}

func TestAggregate_EmptyBatch(t *testing.T) {
	rep := Aggregate("https://example.com/", nil)

	if rep.TotalLinks != 0 || rep.HealthyCount != 0 || rep.UnresolvedCount != 0 {
		t.Errorf("empty batch: got totals %d/%d/%d", rep.TotalLinks, rep.HealthyCount, rep.UnresolvedCount)
	}
	if rep.BrokenLinks == nil {
		t.Error("BrokenLinks must be non-nil for JSON output")
	}
	if rep.GeneratedAt.IsZero() || time.Since(rep.GeneratedAt) > time.Minute {
		t.Errorf("GeneratedAt = %v, want recent timestamp", rep.GeneratedAt)
	}
}
