package storage

import (
	"strings"
	"testing"
	"time"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(t.TempDir())
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveRecordAndRecent(t *testing.T) {
	a := openTestArchive(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, q := range []string{"计算苯的分子量", "what is the pKa of acetic acid", "balance H2 + O2"} {
		ex := &Exchange{
			ConversationID: "c1",
			Question:       q,
			Answer:         "answer " + q,
			Model:          "deepseek-chat",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := a.Record(ex); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if ex.ID == "" {
			t.Error("Record did not assign an ID")
		}
	}

	recent, err := a.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d exchanges, want 2", len(recent))
	}
	if recent[0].Question != "balance H2 + O2" {
		t.Errorf("newest first: got %q", recent[0].Question)
	}

	n, err := a.Count()
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3", n, err)
	}
}

func TestArchiveStepsRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	ex := &Exchange{
		ConversationID: "c1",
		Question:       "计算苯的分子量",
		Answer:         "78.11 g/mol",
		Steps: []ArchivedStep{
			{Action: "molar_mass_calculator", ActionInput: "C6H6", Observation: "78.11 g/mol"},
		},
	}
	if err := a.Record(ex); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := a.ByConversation("c1")
	if err != nil {
		t.Fatalf("ByConversation: %v", err)
	}
	if len(got) != 1 || len(got[0].Steps) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Steps[0].Action != "molar_mass_calculator" {
		t.Errorf("step = %+v", got[0].Steps[0])
	}
}

func TestArchiveSearch(t *testing.T) {
	a := openTestArchive(t)

	entries := []Exchange{
		{ConversationID: "c1", Question: "计算苯的分子量", Answer: "苯的分子量是 78.11 g/mol"},
		{ConversationID: "c2", Question: "乙醇的沸点", Answer: "78.37 摄氏度"},
		{ConversationID: "c3", Question: "titration endpoint", Answer: "use phenolphthalein"},
	}
	for i := range entries {
		if err := a.Record(&entries[i]); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	hits, err := a.Search("分子量")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search returned %d hits, want 1", len(hits))
	}
	if !strings.Contains(hits[0].Preview, "分子量") {
		t.Errorf("preview %q does not show the match", hits[0].Preview)
	}

	// LIKE metacharacters in the query must not act as wildcards.
	if hits, err := a.Search("%"); err != nil || len(hits) != 0 {
		t.Errorf("Search(%%) = %d hits, %v; want none", len(hits), err)
	}

	if hits, err := a.Search("   "); err != nil || len(hits) != 0 {
		t.Errorf("blank query returned %d hits, %v", len(hits), err)
	}
}

func TestArchiveDeleteConversation(t *testing.T) {
	a := openTestArchive(t)

	for _, cid := range []string{"c1", "c1", "c2"} {
		if err := a.Record(&Exchange{ConversationID: cid, Question: "q", Answer: "a"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if err := a.DeleteConversation("c1"); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}

	n, err := a.Count()
	if err != nil || n != 1 {
		t.Errorf("Count after delete = %d, %v; want 1", n, err)
	}
	left, err := a.ByConversation("c2")
	if err != nil || len(left) != 1 {
		t.Errorf("ByConversation(c2) = %d, %v", len(left), err)
	}
}
