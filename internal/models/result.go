package models

import "fmt"

// UnknownCitation is the citation used when a candidate's chunk mapping was lost.
const UnknownCitation = "unknown"

// Evidence is a passage selected to support an answer, with its citation id.
type Evidence struct {
	CitationID string `json:"citation_id"`
	Text       string `json:"text"`
}

// String renders evidence as "[cid] text".
func (e Evidence) String() string {
	return fmt.Sprintf("[%s] %s", e.CitationID, e.Text)
}

// AnswerResult is returned by the pipeline for a query.
type AnswerResult struct {
	Query    string   `json:"query"`
	Evidence []string `json:"evidence"`
	Answer   string   `json:"answer"`
	// Provider names the generator tier that produced Answer.
	Provider string `json:"provider"`
	// Degraded is set when a configured provider fell back to a local answer or failure text.
	Degraded  bool  `json:"degraded"`
	QueryTime int64 `json:"query_time_ms"`
}

// IndexStats summarizes the pipeline's current contents.
type IndexStats struct {
	Documents      int   `json:"documents"`
	Chunks         int   `json:"chunks"`
	Vectors        int   `json:"vectors"`
	KeywordEntries int   `json:"keyword_entries,omitempty"`
	DiskUsageBytes int64 `json:"disk_usage_bytes,omitempty"`
}
