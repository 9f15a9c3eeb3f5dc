package stats

import (
	"slices"
	"testing"

	"github.com/verte-zerg/mjtally/internal/model"
)

func TestTrend(t *testing.T) {
	got := Trend(testEntries(), Participant{Name: "Ann"})
	want := []int{10, 25, 0}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := Trend(testEntries(), Participant{Seat: model.SeatNorth}); !slices.Equal(got, []int{18}) {
		t.Fatalf("expected empty seat trend [18], got %v", got)
	}
	if got := Trend(testEntries(), Participant{Name: "Zed"}); len(got) != 0 {
		t.Fatalf("expected no games for unknown player, got %v", got)
	}
}

func TestCumulative(t *testing.T) {
	got := Cumulative([]int{10, -20, 5})
	if !slices.Equal(got, []int{10, -10, -5}) {
		t.Fatalf("unexpected running balance: %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]int{-9, 0, 9}); got != " +@" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]int{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
}

func TestFormatSigned(t *testing.T) {
	cases := map[int]string{0: "0", 7: "+7", -12: "-12"}
	for in, want := range cases {
		if got := FormatSigned(in); got != want {
			t.Fatalf("FormatSigned(%d): expected %q, got %q", in, want, got)
		}
	}
}
