package detector

import "unicode/utf8"

// authorStats holds one author's rolling statistics for the life of a
// broadcast. It is created on the author's first message and mutated only by
// that author's subsequent messages.
type authorStats struct {
	lastMessageMS int64
	messageCount  int
	avgDelayMS    int64
	avgLength     float64
	records       []*messageRecord
}

func newAuthorStats(content string, timestampMS int64) *authorStats {
	return &authorStats{
		lastMessageMS: timestampMS,
		messageCount:  1,
		avgLength:     float64(utf8.RuneCountInString(content)),
		records:       []*messageRecord{newMessageRecord(content, 1)},
	}
}

// evaluate runs the signal checks for one message, in strict priority order
// with each check short-circuiting the rest: slow mode, rate, length,
// similarity. content must already be normalized and timestamps must arrive
// in non-decreasing order.
//
// On the slow-mode path no statistics beyond the message count are updated;
// the averages stay frozen at their pre-message values.
func (a *authorStats) evaluate(timestampMS int64, content string, slowModeMS int64, params Params) (Reason, bool) {
	a.messageCount++

	delay := timestampMS - a.lastMessageMS
	a.lastMessageMS = timestampMS

	if slowModeMS != 0 && delay < slowModeMS {
		return Reason{Kind: ReasonSlowMode}, true
	}

	count := int64(a.messageCount)
	a.avgDelayMS = (delay + (count-1)*a.avgDelayMS) / count
	if params.IsTooFast(a.avgDelayMS, a.messageCount) {
		return Reason{Kind: ReasonTooFast, AvgDelayMS: a.avgDelayMS}, true
	}

	length := utf8.RuneCountInString(content)
	a.avgLength = (float64(length) + float64(count-1)*a.avgLength) / float64(count)
	if params.MessagesTooLong(a.avgLength, a.messageCount) {
		return Reason{Kind: ReasonTooLong, AvgLength: a.avgLength}, true
	}

	if !params.ShouldCheckMessage(length) {
		return Reason{}, false
	}

	for _, record := range a.records {
		if record.matches(content, length) {
			record.absorb(content, length, a.messageCount)
			if params.TooManySimilar(record.count) {
				return Reason{Kind: ReasonSimilar}, true
			}
			// only the first matching shape is considered
			return Reason{}, false
		}
	}

	a.addRecord(content, params.MaxTrackedMessages)
	return Reason{}, false
}

// addRecord appends a new shape in first-seen order, evicting the
// least-recently-matched record once the limit is reached. A limit of zero
// disables eviction.
func (a *authorStats) addRecord(content string, limit int) {
	if limit > 0 && len(a.records) >= limit {
		evict := 0
		for i, record := range a.records {
			if record.lastSeen < a.records[evict].lastSeen {
				evict = i
			}
		}
		a.records = append(a.records[:evict], a.records[evict+1:]...)
	}
	a.records = append(a.records, newMessageRecord(content, a.messageCount))
}
