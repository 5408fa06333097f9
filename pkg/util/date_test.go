package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeRSS(t *testing.T) {
	got, ok := ParseTime("Thu, 10 Oct 2024 10:10:10 GMT")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Day() != 10 || got.UTC().Hour() != 10 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(DateLayout) != "2024-10-10" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("not a time", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC)
	from, to := DayWindow(now, 10)
	if to.Format(DateLayout) != "2024-03-05" {
		t.Fatalf("unexpected to %v", to)
	}
	if from.Format(DateLayout) != "2024-02-24" {
		t.Fatalf("unexpected from %v", from)
	}
}

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols(" aapl, MSFT,,aapl , tsla")
	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
