package detector

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// similarityRatio is the fixed length-adjusted edit-distance cutoff for
// near-duplicate matching. Unlike the other thresholds it is not exposed
// through Params.
const similarityRatio = 0.8

// messageRecord is one canonical shape of content an author has repeated.
type messageRecord struct {
	content string
	length  int
	count   int
	// lastSeen is the author's message ordinal at the last match, used for
	// least-recently-matched eviction.
	lastSeen int
}

func newMessageRecord(content string, ordinal int) *messageRecord {
	return &messageRecord{
		content:  content,
		length:   utf8.RuneCountInString(content),
		count:    1,
		lastSeen: ordinal,
	}
}

// matches reports whether content is a near-duplicate of the stored shape.
// Small character-level variation (extra punctuation, repeated letters)
// still matches.
func (r *messageRecord) matches(content string, length int) bool {
	if r.content == content {
		return true
	}
	longest := r.length
	if length > longest {
		longest = length
	}
	if longest == 0 {
		return false
	}
	distance := levenshtein.ComputeDistance(r.content, content)
	return 1-float64(distance)/float64(longest) >= similarityRatio
}

// absorb refreshes the representative with the newest variant and counts
// the occurrence.
func (r *messageRecord) absorb(content string, length, ordinal int) {
	r.content = content
	r.length = length
	r.count++
	r.lastSeen = ordinal
}
