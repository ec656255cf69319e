package schedule

import (
	"testing"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

func TestGroupByTimeCounts(t *testing.T) {
	start := date(2024, 1, 1)
	entries := []medication.ScheduleEntry{
		newEntry("Ana Souza", "Amoxicillin", medication.FrequencyDaily, "08:00", &start, nil),
		newEntry("Bruno Lima", "Paracetamol", medication.FrequencyDaily, "08:00", &start, nil),
		newEntry("Carla Nunes", "Ibuprofen", medication.FrequencyDaily, "20:00", &start, nil),
	}
	logs := []medication.DoseLog{{
		ScheduleID:    entries[0].Schedule.ID,
		ScheduledDate: date(2024, 1, 5),
		ScheduledTime: "08:00",
		Administered:  true,
	}}

	items := Reconcile(entries, logs, date(2024, 1, 5), date(2024, 1, 5))
	groups := GroupByTime(items)

	if len(groups) != 2 {
		t.Fatalf("expected 2 time slots, got %d", len(groups))
	}
	if groups[0].Key != "08:00" || groups[1].Key != "20:00" {
		t.Errorf("slots out of order: %s, %s", groups[0].Key, groups[1].Key)
	}

	morning := groups[0]
	if morning.Total != 2 || morning.Completed != 1 {
		t.Errorf("morning slot total=%d completed=%d, want 2/1", morning.Total, morning.Completed)
	}
	if !morning.PartiallyComplete() || morning.FullyComplete() {
		t.Error("morning slot should be partially complete")
	}

	evening := groups[1]
	if evening.Total != 1 || evening.Completed != 0 {
		t.Errorf("evening slot total=%d completed=%d, want 1/0", evening.Total, evening.Completed)
	}
	if evening.PartiallyComplete() || evening.FullyComplete() {
		t.Error("evening slot should be neither partially nor fully complete")
	}
}

func TestGroupInvariants(t *testing.T) {
	start := date(2024, 1, 1)
	var entries []medication.ScheduleEntry
	for _, tod := range []string{"08:00", "08:00", "12:00", "18:00", "18:00", "18:00"} {
		entries = append(entries, newEntry("R", "M", medication.FrequencyDaily, tod, &start, nil))
	}

	items := Reconcile(entries, nil, date(2024, 1, 2), date(2024, 1, 2))
	total := 0
	for _, g := range GroupByTime(items) {
		if g.Completed < 0 || g.Completed > g.Total {
			t.Errorf("group %s: completed %d outside [0, %d]", g.Key, g.Completed, g.Total)
		}
		if g.Total != len(g.Items) {
			t.Errorf("group %s: total %d != %d members", g.Key, g.Total, len(g.Items))
		}
		total += g.Total
	}
	if total != len(items) {
		t.Errorf("groups hold %d items, reconciled %d", total, len(items))
	}
}

func TestGroupByEmptyInput(t *testing.T) {
	if groups := GroupByTime(nil); len(groups) != 0 {
		t.Errorf("expected no groups for no items, got %d", len(groups))
	}
}

func TestSortGroupsWithLast(t *testing.T) {
	groups := []Group[int]{{Key: "zeta"}, {Key: ReturnsGroupKey}, {Key: "alpha"}}
	sortGroupsWithLast(groups, ReturnsGroupKey)

	want := []string{"alpha", "zeta", ReturnsGroupKey}
	for i, w := range want {
		if groups[i].Key != w {
			t.Errorf("position %d: %s, want %s", i, groups[i].Key, w)
		}
	}
}
