package schedule

import (
	"testing"

	"github.com/Taj-Howe/planner-kernel/internal/types"
)

func TestBuildAggregatesPerItem(t *testing.T) {
	blocks := []*types.ScheduledBlock{
		{ItemID: "t1", StartAt: 1000, DurationMinutes: 30},
		{ItemID: "t1", StartAt: 5000, DurationMinutes: 60},
		{ItemID: "t2", StartAt: 0, DurationMinutes: 15},
	}
	summaries := Build(blocks)

	s1 := summaries["t1"]
	if s1.BlockCount != 2 {
		t.Errorf("t1 BlockCount = %d, want 2", s1.BlockCount)
	}
	if s1.TotalMinutes != 90 {
		t.Errorf("t1 TotalMinutes = %d, want 90", s1.TotalMinutes)
	}
	if s1.EarliestStartAt == nil || *s1.EarliestStartAt != 1000 {
		t.Errorf("t1 EarliestStartAt = %v, want 1000", s1.EarliestStartAt)
	}
	wantEnd := int64(5000 + 60*60000)
	if s1.LatestEndAt == nil || *s1.LatestEndAt != wantEnd {
		t.Errorf("t1 LatestEndAt = %v, want %d", s1.LatestEndAt, wantEnd)
	}

	s2 := summaries["t2"]
	if s2.BlockCount != 1 {
		t.Errorf("t2 BlockCount = %d, want 1", s2.BlockCount)
	}
}

func TestBuildEmpty(t *testing.T) {
	summaries := Build(nil)
	if len(summaries) != 0 {
		t.Errorf("Build(nil) = %v, want empty map", summaries)
	}
}

func TestStartEndMaps(t *testing.T) {
	blocks := []*types.ScheduledBlock{
		{ItemID: "t1", StartAt: 1000, DurationMinutes: 30},
	}
	summaries := Build(blocks)
	start, end := StartEndMaps(summaries)

	if start["t1"] == nil || *start["t1"] != 1000 {
		t.Errorf("start[t1] = %v, want 1000", start["t1"])
	}
	if end["t1"] == nil || *end["t1"] != 1000+30*60000 {
		t.Errorf("end[t1] = %v, want %d", end["t1"], 1000+30*60000)
	}
	if _, ok := start["missing"]; ok {
		t.Error("start map should not contain ids with no blocks")
	}
}
