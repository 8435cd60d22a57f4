package domain

import "testing"

func TestTitleBankResolve(t *testing.T) {
	bank := TitleBank{
		"Alice-001": {"First", "Second", "Third"},
	}

	testCases := []struct {
		name   string
		clipID string
		index  int
		want   string
	}{
		{name: "one-based index", clipID: "Alice-001", index: 1, want: "First"},
		{name: "second title", clipID: "Alice-001", index: 2, want: "Second"},
		{name: "wraps past the end", clipID: "Alice-001", index: 4, want: "First"},
		{name: "zero falls back to first", clipID: "Alice-001", index: 0, want: "First"},
		{name: "unknown clip uses creator name", clipID: "Bob-002", index: 1, want: "Video by Bob"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bank.Resolve(tc.clipID, tc.index); got != tc.want {
				t.Errorf("Resolve(%q, %d) = %q, want %q", tc.clipID, tc.index, got, tc.want)
			}
		})
	}
}

func TestCreatorName(t *testing.T) {
	testCases := []struct {
		clipID string
		want   string
	}{
		{clipID: "Alice-001", want: "Alice"},
		{clipID: "Mary-Jane-007", want: "Mary Jane"},
		{clipID: "noseparator", want: "Creator"},
		{clipID: "", want: "Creator"},
	}

	for _, tc := range testCases {
		if got := CreatorName(tc.clipID); got != tc.want {
			t.Errorf("CreatorName(%q) = %q, want %q", tc.clipID, got, tc.want)
		}
	}
}
