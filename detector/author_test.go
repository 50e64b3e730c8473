package detector

import (
	"testing"
	"time"
)

func quietParams() Params {
	return Params{
		SimilarityMessageCountThreshold: 100,
		SimilarityMinMessageLength:      10,
		MinRegistrationDate:             time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSlowModeFreezesStatistics(t *testing.T) {
	stats := newAuthorStats("first message here", 0)
	params := quietParams()

	reason, hit := stats.evaluate(3000, "second message text", 5000, params)
	if !hit || reason.Kind != ReasonSlowMode {
		t.Fatalf("expected slow mode, got %v (hit=%v)", reason, hit)
	}
	if stats.avgDelayMS != 0 {
		t.Fatalf("avg delay mutated on slow-mode path: %d", stats.avgDelayMS)
	}
	if stats.avgLength != float64(runeLen("first message here")) {
		t.Fatalf("avg length mutated on slow-mode path: %f", stats.avgLength)
	}
	if stats.messageCount != 2 {
		t.Fatalf("expected message count 2, got %d", stats.messageCount)
	}
}

func TestSlowModeWinsOverOtherSignals(t *testing.T) {
	// a message that would also trip rate, length and similarity checks is
	// still reported as slow mode only
	params := Params{
		DelayThresholdMS:                10000,
		DelayMinMessageCount:            1,
		SimilarityMessageCountThreshold: 1,
		SimilarityMinMessageLength:      1,
		AvgLengthThreshold:              1,
		AvgLengthMessageCount:           1,
		MinRegistrationDate:             time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	stats := newAuthorStats("spam spam spam spam", 0)
	reason, hit := stats.evaluate(1000, "spam spam spam spam", 5000, params)
	if !hit || reason.Kind != ReasonSlowMode {
		t.Fatalf("expected slow mode to short-circuit, got %v (hit=%v)", reason, hit)
	}
}

func TestTruncatingRunningMean(t *testing.T) {
	stats := newAuthorStats("baseline message text", 0)
	params := quietParams()

	timestamps := []int64{1000, 1500, 1833}
	contents := []string{"second message text!", "third message body!!", "fourth message body!"}
	// truncating recurrence: 500, 500, 458
	expected := []int64{500, 500, 458}

	for i, ts := range timestamps {
		if _, hit := stats.evaluate(ts, contents[i], 0, params); hit {
			t.Fatalf("unexpected hit at step %d", i)
		}
		if stats.avgDelayMS != expected[i] {
			t.Fatalf("step %d: avg delay %d, want %d", i, stats.avgDelayMS, expected[i])
		}
	}
}

func TestTooFastReportsAverageDelay(t *testing.T) {
	params := quietParams()
	params.DelayThresholdMS = 2000
	params.DelayMinMessageCount = 3

	stats := newAuthorStats("first message body ab", 0)
	if _, hit := stats.evaluate(500, "second message body a", 0, params); hit {
		t.Fatalf("unexpected hit below min message count")
	}
	reason, hit := stats.evaluate(1000, "third message body ab", 0, params)
	if !hit || reason.Kind != ReasonTooFast {
		t.Fatalf("expected too fast, got %v (hit=%v)", reason, hit)
	}
	if reason.AvgDelayMS != 333 {
		t.Fatalf("expected avg delay 333, got %d", reason.AvgDelayMS)
	}
}

func TestTooLongAverage(t *testing.T) {
	params := quietParams()
	params.AvgLengthThreshold = 20
	params.AvgLengthMessageCount = 2

	long := "this is a long message that keeps going on and on"
	stats := newAuthorStats(long, 0)
	reason, hit := stats.evaluate(60_000, long, 0, params)
	if !hit || reason.Kind != ReasonTooLong {
		t.Fatalf("expected too long, got %v (hit=%v)", reason, hit)
	}
	if reason.AvgLength != float64(runeLen(long)) {
		t.Fatalf("expected avg length %d, got %f", runeLen(long), reason.AvgLength)
	}
}

func TestSimilarAtThirdOccurrence(t *testing.T) {
	params := quietParams()
	params.SimilarityMessageCountThreshold = 3

	stats := newAuthorStats("hello world!", 0)
	if _, hit := stats.evaluate(60_000, "hello world!", 0, params); hit {
		t.Fatalf("unexpected hit at second occurrence")
	}
	reason, hit := stats.evaluate(120_000, "hello world!", 0, params)
	if !hit || reason.Kind != ReasonSimilar {
		t.Fatalf("expected similar at third occurrence, got %v (hit=%v)", reason, hit)
	}
}

func TestShortMessagesSkipSimilarityCheck(t *testing.T) {
	params := quietParams()
	params.SimilarityMessageCountThreshold = 2
	params.SimilarityMinMessageLength = 20

	stats := newAuthorStats("short spam", 0)
	for i := 1; i <= 5; i++ {
		if _, hit := stats.evaluate(int64(i)*60_000, "short spam", 0, params); hit {
			t.Fatalf("short message tracked for similarity at repeat %d", i)
		}
	}
	if len(stats.records) != 1 {
		t.Fatalf("expected no new records for short messages, got %d", len(stats.records))
	}
}

func TestRecordEvictionKeepsRecentShapes(t *testing.T) {
	params := quietParams()
	params.MaxTrackedMessages = 2

	stats := newAuthorStats("first distinct shape aaaa", 0)
	stats.evaluate(60_000, "second shape, nothing alike", 0, params)
	stats.evaluate(120_000, "third text, unrelated again", 0, params)

	if len(stats.records) != 2 {
		t.Fatalf("expected 2 records after eviction, got %d", len(stats.records))
	}
	if stats.records[0].content != "second shape, nothing alike" {
		t.Fatalf("expected oldest unmatched shape evicted, kept %q", stats.records[0].content)
	}
	if stats.records[1].content != "third text, unrelated again" {
		t.Fatalf("expected newest shape appended, got %q", stats.records[1].content)
	}
}
