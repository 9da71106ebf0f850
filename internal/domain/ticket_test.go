package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLabelDelta(t *testing.T) {
	tests := []struct {
		name      string
		current   []string
		suggested []CategoryLabel
		want      []string
	}{
		{
			name:      "one already present",
			current:   []string{"maintenance"},
			suggested: []CategoryLabel{LabelMaintenance, LabelInitiative},
			want:      []string{"initiative"},
		},
		{
			name:      "all present",
			current:   []string{"initiative", "maintenance", "frontend"},
			suggested: []CategoryLabel{LabelMaintenance, LabelInitiative},
			want:      nil,
		},
		{
			name:      "no current labels",
			current:   nil,
			suggested: []CategoryLabel{LabelCostOptimization},
			want:      []string{"cost optimization"},
		},
		{
			name:      "duplicate suggestions collapse",
			current:   nil,
			suggested: []CategoryLabel{LabelInitiative, LabelInitiative},
			want:      []string{"initiative"},
		},
		{
			name:      "nothing suggested",
			current:   []string{"maintenance"},
			suggested: nil,
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LabelDelta(tt.current, tt.suggested)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("LabelDelta(%v, %v) = %v, want %v", tt.current, tt.suggested, got, tt.want)
			}
		})
	}
}

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	for _, l := range []string{"initiative", "maintenance", "cost optimization"} {
		if !v.Contains(l) {
			t.Fatalf("expected default vocabulary to contain %q", l)
		}
	}
	if v.Contains("Initiative") || v.Contains(" initiative") || v.Contains("support") {
		t.Fatal("vocabulary must not coerce or accept unknown labels")
	}
	if len(v.Examples()) == 0 {
		t.Fatal("expected default worked examples")
	}
}

func TestVocabularyAddRejectsDuplicatesAndEmpty(t *testing.T) {
	v := DefaultVocabulary()
	if err := v.Add(" maintenance ", "again"); err == nil {
		t.Fatal("expected duplicate label to be rejected")
	}
	if err := v.Add("  ", "blank"); err == nil {
		t.Fatal("expected empty label to be rejected")
	}
	if err := v.Add("documentation", "Docs work"); err != nil {
		t.Fatalf("Add documentation: %v", err)
	}
	if !v.Contains("documentation") {
		t.Fatal("expected documentation after Add")
	}
	if err := v.AddExample(LabelExample{Title: "Write runbook", Labels: []CategoryLabel{"runbooks"}}); err == nil {
		t.Fatal("expected example with unknown label to be rejected")
	}
}

func TestSuccessRate(t *testing.T) {
	if got := (RunStatistics{}).SuccessRate(); got != 0 {
		t.Fatalf("empty run success rate = %f, want 0", got)
	}
	s := RunStatistics{Seen: 4, Classified: 3}
	if got := s.SuccessRate(); got != 75 {
		t.Fatalf("success rate = %f, want 75", got)
	}
}

func TestStatusErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ErrAuth},
		{403, ErrAuth},
		{404, ErrNotFound},
		{400, ErrStore},
		{500, ErrStore},
	}
	for _, tt := range tests {
		err := StatusError("search", tt.status, []byte("boom"))
		if !errors.Is(err, tt.want) {
			t.Errorf("StatusError(%d) kind = %v, want %v", tt.status, err.Kind, tt.want)
		}
	}

	long := strings.Repeat("x", 2000)
	err := StatusError("search", 500, []byte(long))
	if !strings.Contains(err.Body, "truncated") {
		t.Fatalf("expected long body to be truncated, got len %d", len(err.Body))
	}
}

func TestStatusErrorTruncatesOnRuneBoundary(t *testing.T) {
	// 511 ASCII bytes put the 512 cut inside the first two-byte rune.
	body := strings.Repeat("x", 511) + strings.Repeat("é", 100)
	err := StatusError("search", 500, []byte(body))
	if !utf8.ValidString(err.Body) {
		t.Fatalf("truncated body is not valid UTF-8: %q", err.Body[500:])
	}
	if !strings.HasPrefix(err.Body, strings.Repeat("x", 511)+"...") {
		t.Fatalf("unexpected truncation %q", err.Body[500:])
	}
}

func TestClipUTF8(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
		{"aé", 3, "aé"},
		{"日本語", 4, "日"},
		{"日本語", 2, ""},
	}
	for _, tt := range tests {
		if got := ClipUTF8(tt.in, tt.max); got != tt.want {
			t.Errorf("ClipUTF8(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTransportErrorUnwrapsBoth(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := TransportError("search", cause)
	if !errors.Is(err, ErrConnectivity) {
		t.Fatal("expected ErrConnectivity")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to be reachable")
	}
}
