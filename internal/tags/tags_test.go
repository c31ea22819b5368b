package tags

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	levels := Named("DEBUG", "INFO", "WARN", "ERROR")

	tests := []struct {
		name    string
		line    string
		filter  []string
		wantIdx int
		wantOK  bool
	}{
		{name: "no match", line: "plain text", wantIdx: -1},
		{name: "catalog order", line: "INFO: ok", wantIdx: 1, wantOK: true},
		{name: "first catalog match wins", line: "ERROR after WARN", wantIdx: 2, wantOK: true},
		{name: "filter excludes", line: "INFO: ok", filter: []string{"ERROR"}, wantIdx: -1},
		{name: "filter includes", line: "ERROR: boom", filter: []string{"ERROR"}, wantIdx: 3, wantOK: true},
		{name: "filter order wins", line: "WARN then ERROR", filter: []string{"ERROR", "WARN"}, wantIdx: 3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := levels.Resolve(tt.filter...)
			if err != nil {
				t.Fatalf("Resolve(%v) error = %v", tt.filter, err)
			}
			idx, ok := Match(tt.line, levels, f)
			if idx != tt.wantIdx || ok != tt.wantOK {
				t.Fatalf("Match(%q) = (%d, %v), want (%d, %v)", tt.line, idx, ok, tt.wantIdx, tt.wantOK)
			}
		})
	}
}

func TestMatch_DefaultCatalogLogcatLine(t *testing.T) {
	line := "10-18 12:00:01.123 E/ActivityManager( 512): ANR in com.example"
	idx, ok := Match(line, DefaultCatalog, nil)
	if !ok || DefaultCatalog[idx].Name != "ERROR" {
		t.Fatalf("Match = (%d, %v), want ERROR", idx, ok)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	line := "W/ and E/ in one line"
	first, _ := Match(line, DefaultCatalog, nil)
	for i := 0; i < 10; i++ {
		if got, _ := Match(line, DefaultCatalog, nil); got != first {
			t.Fatalf("Match run %d = %d, want %d", i, got, first)
		}
	}
}

func TestResolve(t *testing.T) {
	f, err := DefaultCatalog.Resolve("ERROR", "W/", "ERROR")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if diff := cmp.Diff(FilterSet{4, 3}, f); diff != "" {
		t.Fatalf("Resolve mismatch (-want +got):\n%s", diff)
	}

	if _, err := DefaultCatalog.Resolve("NOPE"); err == nil {
		t.Fatalf("Resolve(NOPE) returned nil error")
	}

	if f, err := DefaultCatalog.Resolve(); err != nil || f != nil {
		t.Fatalf("Resolve() = (%v, %v), want (nil, nil)", f, err)
	}
}

func TestNames(t *testing.T) {
	if diff := cmp.Diff([]string{"WARN", "ERROR"}, DefaultCatalog.Names(FilterSet{3, 4})); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}
	if got := len(DefaultCatalog.Names(nil)); got != len(DefaultCatalog) {
		t.Fatalf("Names(nil) len = %d, want %d", got, len(DefaultCatalog))
	}
}

func TestNewColorTable(t *testing.T) {
	tests := []struct {
		name    string
		colors  []string
		want    ColorTable
		wantErr bool
	}{
		{
			name: "none",
			want: ColorTable{FallbackColor, FallbackColor, FallbackColor, FallbackColor, FallbackColor, FallbackColor},
		},
		{
			name:   "padded",
			colors: []string{"#111111", " ", "#333333"},
			want:   ColorTable{"#111111", FallbackColor, "#333333", FallbackColor, FallbackColor, FallbackColor},
		},
		{
			name:    "too many",
			colors:  []string{"1", "2", "3", "4", "5", "6", "7"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewColorTable(DefaultCatalog, tt.colors...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewColorTable returned nil error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewColorTable error = %v", err)
			}
			if len(got) != len(DefaultCatalog) {
				t.Fatalf("len = %d, want %d", len(got), len(DefaultCatalog))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("NewColorTable mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestColorTable_ColorOutOfRange(t *testing.T) {
	table := ColorTable{"#FF0000"}
	if got := table.Color(5); got != FallbackColor {
		t.Fatalf("Color(5) = %q, want %q", got, FallbackColor)
	}
	if got := table.Color(0); got != "#FF0000" {
		t.Fatalf("Color(0) = %q, want #FF0000", got)
	}
}

func TestCatalogValidate(t *testing.T) {
	if err := DefaultCatalog.Validate(); err != nil {
		t.Fatalf("DefaultCatalog.Validate() = %v", err)
	}
	if err := (Catalog{}).Validate(); err == nil {
		t.Fatalf("empty catalog validated")
	}
	if err := (Catalog{{Name: "A", Tag: ""}}).Validate(); err == nil {
		t.Fatalf("empty tag validated")
	}
	if err := Named("A", "A").Validate(); err == nil {
		t.Fatalf("duplicate names validated")
	}
}
