package parser

import "testing"

func TestParseEventDateRange(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
	}{
		{
			name:      "range with weekday annotations",
			input:     "2025年9月1日(月) - 9月15日(月)",
			wantStart: "2025-09-01",
			wantEnd:   "2025-09-15",
		},
		{
			name:      "range without spaces",
			input:     "2025年10月4日-10月26日",
			wantStart: "2025-10-04",
			wantEnd:   "2025-10-26",
		},
		{
			name:      "double digit day range",
			input:     "2025年11月22日(土) - 12月7日(日)",
			wantStart: "2025-11-22",
			wantEnd:   "2025-12-07",
		},
		{
			name:  "single date is not a range",
			input: "2025年9月8日",
		},
		{
			name:  "free text",
			input: "開催中です",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ParseEventDateRange(tt.input)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("ParseEventDateRange(%q) = (%q, %q), want (%q, %q)",
					tt.input, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseSingleDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain date", input: "2025年9月8日", want: "2025-09-08"},
		{name: "date with trailing text", input: "2025年9月6日 午前中希望", want: "2025-09-06"},
		{name: "double digit month and day", input: "2025年12月31日", want: "2025-12-31"},
		{name: "western format not recognized", input: "2025-09-08", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSingleDate(tt.input); got != tt.want {
				t.Errorf("ParseSingleDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{name: "with counter suffix", input: "23歳", want: intPtr(23)},
		{name: "bare digits", input: "35", want: intPtr(35)},
		{name: "digits inside text", input: "年齢は42です", want: intPtr(42)},
		{name: "empty", input: "", want: nil},
		{name: "no digits", input: "ひみつ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAge(tt.input)
			if !intPtrEq(got, tt.want) {
				t.Errorf("ParseAge(%q) = %v, want %v", tt.input, fmtPtr(got), fmtPtr(tt.want))
			}
		})
	}
}

// ParseAmount keeps the literal digit run only: "9万円" is 9, not 90000.
// The missing unit scaling is intentional; see the package docs.
func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{name: "man-yen unit not scaled", input: "9万円", want: intPtr(9)},
		{name: "twenty man-yen", input: "20万円", want: intPtr(20)},
		{name: "plain yen", input: "85000円", want: intPtr(85000)},
		{name: "empty", input: "", want: nil},
		{name: "no digits", input: "未定", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if !intPtrEq(got, tt.want) {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, fmtPtr(got), fmtPtr(tt.want))
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare mobile run", input: "09092734235", want: "090-9273-4235"},
		{name: "landline run kept verbatim", input: "0798123456", want: "0798123456"},
		{name: "already grouped", input: "090-9273-4235", want: "090-9273-4235"},
		{name: "not a phone", input: "unknown", want: "unknown"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
