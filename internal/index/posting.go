// Package index defines the posting types shared by the construction and
// final phases of the inverted index, and the in-memory accumulator used
// during corpus ingestion.
package index

// BuildPosting is a construction-phase posting: a document's raw term
// frequency and summed tag importance for one token.
type BuildPosting struct {
	DocID      uint32 `json:"docID"`
	TF         uint32 `json:"tokenFrequency"`
	Importance uint32 `json:"tokenImportance"`
}

// FinalPosting is a final-phase posting: a document's weighted TF-IDF score
// for one token, ready for query-time score accumulation.
type FinalPosting struct {
	DocID uint32  `json:"docID"`
	Score float64 `json:"tf_idf"`
}

// BuildPostingList is a construction-phase posting list, sorted ascending
// by DocID.
type BuildPostingList []BuildPosting

// FinalPostingList is a final-phase posting list, sorted ascending by
// DocID.
type FinalPostingList []FinalPosting
