package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveTitleKeywordPriority(t *testing.T) {
	tests := []struct {
		name  string
		issue string
		want  string
	}{
		{"validation", "validation protocol is missing", "Validation Process"},
		{"calibration", "missing calibration records", "Equipment Calibration Requirements"},
		{"equipment", "equipment is not maintained", "Equipment Calibration Requirements"},
		{"training", "no training schedule defined", "Personnel Training Documentation"},
		{"personnel", "personnel responsibilities unclear", "Personnel Training Documentation"},
		{"documentation", "documentation is incomplete", "Documentation Requirements"},
		// "documented" contains "document", which outranks "process".
		{"documented beats process", "no documented process", "Documentation Requirements"},
		{"procedure", "procedure steps are vague", "Process Requirements"},
		{"quality", "quality checks are skipped", "Quality Control Requirements"},
		{"record", "records are not retained", "Record Keeping Requirements"},
		{"no match", "something else entirely", "Base Title"},
		{"case insensitive", "VALIDATION step absent", "Validation Process"},
		// validation is checked before training, so a mixed issue
		// resolves to the validation title.
		{"priority order", "training for validation is missing", "Validation Process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTitle(tt.issue, "Base Title")
			if got != tt.want {
				t.Errorf("deriveTitle(%q) = %q, want %q", tt.issue, got, tt.want)
			}
		})
	}
}

func TestDeriveTitleIsDeterministic(t *testing.T) {
	issue := "equipment calibration and record keeping both lacking"
	first := deriveTitle(issue, "Base")
	for i := 0; i < 5; i++ {
		if got := deriveTitle(issue, "Base"); got != first {
			t.Fatalf("deriveTitle not stable: %q then %q", first, got)
		}
	}
	if first != "Equipment Calibration Requirements" {
		t.Errorf("Expected calibration title, got %q", first)
	}
}

func TestExtractRelevantEmptyText(t *testing.T) {
	got := extractRelevant("missing calibration", "", fdaNotAvailable)
	if got != "FDA requirement not available" {
		t.Errorf("Expected placeholder, got %q", got)
	}
}

func TestExtractRelevantPicksMatchingSentences(t *testing.T) {
	full := "Calibration must be performed monthly. Staff shall wear gloves. Records of calibration are retained for two years."

	got := extractRelevant("missing calibration records", full, fdaNotAvailable)

	want := "Calibration must be performed monthly. Records of calibration are retained for two years."
	if got != want {
		t.Errorf("Expected matching sentences joined, got %q", got)
	}
}

func TestExtractRelevantNoMatchReturnsFullText(t *testing.T) {
	full := "Staff shall wear gloves. Visitors must sign in."

	got := extractRelevant("missing calibration records", full, fdaNotAvailable)

	if got != full {
		t.Errorf("Expected full text back, got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"terminal punctuation kept",
			"First sentence. Second one! Third?",
			[]string{"First sentence.", "Second one!", "Third?"},
		},
		{
			"no boundary without following space",
			"Version 2.1 applies here",
			[]string{"Version 2.1 applies here"},
		},
		{
			"newline separator",
			"One done.\nTwo done.",
			[]string{"One done.", "Two done."},
		},
		{
			"single sentence",
			"Just one sentence with no end",
			[]string{"Just one sentence with no end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("splitSentences(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestClassifyStructuredPrefersOwnFields(t *testing.T) {
	f := finding{
		issue:          "missing calibration records",
		structured:     true,
		category:       "Custom Category",
		fdaRequirement: "21 CFR 820.72 requires calibration.",
		sopDetail:      "SOP section 4 covers calibration.",
	}

	title, fda, sop := classify(f, "fallback fda", "fallback sop", "Base")

	if title != "Custom Category" {
		t.Errorf("Expected category as title, got %q", title)
	}
	if fda != "21 CFR 820.72 requires calibration." {
		t.Errorf("Expected finding's own requirement, got %q", fda)
	}
	if sop != "SOP section 4 covers calibration." {
		t.Errorf("Expected finding's own detail, got %q", sop)
	}
}

func TestClassifyStructuredFallsBackPerField(t *testing.T) {
	f := finding{issue: "missing calibration records", structured: true}

	title, fda, sop := classify(f, "fallback fda", "fallback sop", "Base")

	if title != "Equipment Calibration Requirements" {
		t.Errorf("Expected derived title, got %q", title)
	}
	if fda != "fallback fda" {
		t.Errorf("Expected fallback requirement, got %q", fda)
	}
	if sop != "fallback sop" {
		t.Errorf("Expected fallback detail, got %q", sop)
	}
}

func TestClassifyLegacyExtractsExcerpts(t *testing.T) {
	f := finding{issue: "missing calibration records"}
	fullFDA := "Calibration is mandatory. Gloves are required."
	fullSOP := "Our calibration happens yearly. Lunch is at noon."

	title, fda, sop := classify(f, fullFDA, fullSOP, "Base")

	if title != "Equipment Calibration Requirements" {
		t.Errorf("Expected derived title, got %q", title)
	}
	if fda != "Calibration is mandatory." {
		t.Errorf("Expected extracted requirement sentence, got %q", fda)
	}
	if sop != "Our calibration happens yearly." {
		t.Errorf("Expected extracted detail sentence, got %q", sop)
	}
}
