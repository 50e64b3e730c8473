package normalize

import "testing"

func TestCleanStripsPictographs(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"❤t❤e❤s❤t❤", "test"},
		{"t🤚e🤚🏻s🤚🏼t🤚🏽i🤚🏾n🤚🏿g", "testing"},
		{"🧔t🧔🏻e🧔🏼s🧔🏽t🧔🏾a🧔🏿b", "testab"},
		{"t🧑‍🦼e🧑🏻‍🦼s🧑🏼‍🦼t🧑🏽‍🦼i🧑🏾‍🦼n🧑🏿‍🦼g", "testing"},
		{"t👭🏽e👩🏽‍🤝‍👩🏿s👩🏽‍🤝‍👩🏻t👩🏿‍🤝‍👩🏾i👫🏼n👩🏾‍🤝‍👨🏼g", "testing"},
		{"👩‍👩‍👧‍👧t👩‍👩‍👧‍👧e👩‍👩‍👧‍👧s👩‍👩‍👧‍👧t👩‍👩‍👧‍👧i👩‍👩‍👧‍👧n👩‍👩‍👧‍👧g123", "testing123"},
	}
	for _, tc := range cases {
		if got := Clean(tc.input); got != tc.expected {
			t.Fatalf("Clean(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestCleanKeepsPunctuation(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"hello, world!?", "hello, world!?"},
		{"こんにちは。、！？…", "こんにちは。、！？…"},
		{"déjà vu", "déjà vu"},
		{"1️⃣ first", "1 first"},
	}
	for _, tc := range cases {
		if got := Clean(tc.input); got != tc.expected {
			t.Fatalf("Clean(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"t❤e❤s❤t",
		"plain ascii",
		"🔥🔥🔥",
		"mixed 🎉 content 🎊 here",
	}
	for _, input := range inputs {
		once := Clean(input)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}
