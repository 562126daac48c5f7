package query

import "container/heap"

// ScoredDoc is one candidate result: a document and its accumulated score.
type ScoredDoc struct {
	DocID uint32
	Score float64
}

// TopK selects the k highest-scoring documents from scores, breaking ties
// by ascending DocID, and returns them sorted descending by score.
func TopK(scores map[uint32]float64, k int) []ScoredDoc {
	if k <= 0 {
		return nil
	}
	h := &scoredDocHeap{}
	heap.Init(h)
	for docID, score := range scores {
		heap.Push(h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

// scoredDocHeap is a min-heap ordered by ascending score, with ties broken
// by descending DocID — so popping the root always discards the weakest
// candidate under the ascending-doc_id tie-break rule.
type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
