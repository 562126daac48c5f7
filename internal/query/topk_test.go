package query

import "testing"

func TestTopKOrdersByDescendingScore(t *testing.T) {
	scores := map[uint32]float64{
		0: 1.5,
		1: 9.0,
		2: 4.2,
	}
	got := TopK(scores, 3)
	want := []uint32{1, 2, 0}
	if len(got) != len(want) {
		t.Fatalf("TopK returned %d results, want %d", len(got), len(want))
	}
	for i, docID := range want {
		if got[i].DocID != docID {
			t.Errorf("result[%d].DocID = %d, want %d", i, got[i].DocID, docID)
		}
	}
}

func TestTopKTruncatesToK(t *testing.T) {
	scores := map[uint32]float64{0: 1, 1: 2, 2: 3, 3: 4, 4: 5}
	got := TopK(scores, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].DocID != 4 || got[1].DocID != 3 {
		t.Errorf("top-2 = %v, want doc_ids [4, 3]", got)
	}
}

// TestTopKTieBreaksByAscendingDocID checks that, among equally scored
// documents, the ones with smaller doc_id survive truncation.
func TestTopKTieBreaksByAscendingDocID(t *testing.T) {
	scores := map[uint32]float64{
		10: 5.0,
		3:  5.0,
		7:  5.0,
	}
	got := TopK(scores, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].DocID != 3 || got[1].DocID != 7 {
		t.Errorf("tie-break result = %v, want doc_ids [3, 7] (ascending, largest doc_id 10 evicted)", got)
	}
}

func TestTopKEmptyScores(t *testing.T) {
	if got := TopK(map[uint32]float64{}, 5); len(got) != 0 {
		t.Errorf("expected no results for empty scores, got %v", got)
	}
}

func TestTopKZeroK(t *testing.T) {
	scores := map[uint32]float64{0: 1}
	if got := TopK(scores, 0); got != nil {
		t.Errorf("expected nil for k=0, got %v", got)
	}
}
