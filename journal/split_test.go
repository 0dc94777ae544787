package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "   ", nil},
		{"plain", "mood 5 happy", []string{"mood", "5", "happy"}},
		{"double quotes", `add 5 "Lab report" -b "draft intro"`, []string{"add", "5", "Lab report", "-b", "draft intro"}},
		{"single quotes keep backslash", `add 5 'a\b'`, []string{"add", "5", `a\b`}},
		{"escaped space", `add 5 Lab\ report`, []string{"add", "5", "Lab report"}},
		{"empty quoted arg", `edit 5 n1 --body ""`, []string{"edit", "5", "n1", "--body", ""}},
		{"tabs", "show\t\t", []string{"show"}},
		{"adjacent quotes join", `add 5 "Lab "'report'`, []string{"add", "5", "Lab report"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitArgsUnterminated(t *testing.T) {
	for _, line := range []string{`add 5 "Lab`, `add 5 'Lab`, `add 5 Lab\`} {
		if _, err := splitArgs(line); !errors.Is(err, errUnterminatedQuote) {
			t.Fatalf("%q: expected errUnterminatedQuote, got %v", line, err)
		}
	}
}
