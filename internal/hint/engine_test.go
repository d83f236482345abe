package hint

import "testing"

func TestRevealPenalties(t *testing.T) {
	testCases := []struct {
		name            string
		hintIndex       int
		expectedPenalty int
	}{
		{"level 1", 0, 5},
		{"level 2", 1, 10},
		{"level 3", 2, 15},
		{"level 4", 3, 20},
		{"unknown level", 9, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine()
			charged := e.Reveal("q1", tc.hintIndex)
			if charged != tc.expectedPenalty {
				t.Errorf("Expected penalty %d, got %d", tc.expectedPenalty, charged)
			}
			if e.QuestionPenalty("q1") != tc.expectedPenalty {
				t.Errorf("Expected question penalty %d, got %d", tc.expectedPenalty, e.QuestionPenalty("q1"))
			}
		})
	}
}

func TestRevealIdempotent(t *testing.T) {
	e := NewEngine()

	first := e.Reveal("q1", 0)
	if first != 5 {
		t.Fatalf("Expected 5 on first reveal, got %d", first)
	}

	second := e.Reveal("q1", 0)
	if second != 0 {
		t.Errorf("Expected 0 on duplicate reveal, got %d", second)
	}

	if e.TotalPenalty() != 5 {
		t.Errorf("Expected total penalty 5 after duplicate reveal, got %d", e.TotalPenalty())
	}

	u := e.Usage("q1")
	if len(u.Levels) != 1 {
		t.Errorf("Expected a single recorded level, got %v", u.Levels)
	}
	if len(u.RevealedAt) != len(u.Levels) {
		t.Errorf("Expected timestamps to match levels, got %d vs %d", len(u.RevealedAt), len(u.Levels))
	}
}

func TestPenaltyAccumulatesAcrossLevelsAndQuestions(t *testing.T) {
	e := NewEngine()

	e.Reveal("q1", 0) // 5
	e.Reveal("q1", 1) // 10
	e.Reveal("q2", 0) // 5
	e.Reveal("q2", 2) // 15

	if e.QuestionPenalty("q1") != 15 {
		t.Errorf("Expected q1 penalty 15, got %d", e.QuestionPenalty("q1"))
	}
	if e.QuestionPenalty("q2") != 20 {
		t.Errorf("Expected q2 penalty 20, got %d", e.QuestionPenalty("q2"))
	}
	if e.TotalPenalty() != 35 {
		t.Errorf("Expected total penalty 35, got %d", e.TotalPenalty())
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := NewEngine()
	e.Reveal("q1", 0)
	e.Reveal("q1", 1)

	snap := e.Snapshot()

	restored := NewEngine()
	restored.Restore(snap)

	if restored.TotalPenalty() != 15 {
		t.Errorf("Expected restored total 15, got %d", restored.TotalPenalty())
	}
	// Duplicate reveal after restore is still a no-op.
	if charged := restored.Reveal("q1", 1); charged != 0 {
		t.Errorf("Expected duplicate reveal to charge 0 after restore, got %d", charged)
	}
}

func TestReset(t *testing.T) {
	e := NewEngine()
	e.Reveal("q1", 0)
	e.Reset()

	if e.TotalPenalty() != 0 {
		t.Errorf("Expected total 0 after reset, got %d", e.TotalPenalty())
	}
	if charged := e.Reveal("q1", 0); charged != 5 {
		t.Errorf("Expected reveal to charge again after reset, got %d", charged)
	}
}
