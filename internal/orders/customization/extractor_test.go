package customization

import (
	"reflect"
	"testing"
)

func entry(key string, value interface{}) MetaEntry {
	return MetaEntry{Key: key, Value: value}
}

func TestExtract_NoMatchingFieldsReturnsNil(t *testing.T) {
	meta := []MetaEntry{
		entry("_internal_sku", "ABC-123"),
		entry("gift_wrap", true),
		entry("delivery window", "morning"),
	}

	if record := Extract(meta); record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestExtract_EmptyMetadataReturnsNil(t *testing.T) {
	if record := Extract(nil); record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestExtract_SingleFieldOnly(t *testing.T) {
	meta := []MetaEntry{
		entry("_sku", "X"),
		entry("Font", "Brush Script"),
	}

	record := Extract(meta)
	if record == nil {
		t.Fatal("expected a record")
	}
	if record.Font == nil || *record.Font != "Brush Script" {
		t.Fatalf("expected font Brush Script, got %v", record.Font)
	}
	if record.Style != nil || record.Color != nil || record.Theme != nil || record.Size != nil {
		t.Errorf("expected only the font field to be set: %+v", record)
	}
	if len(record.Raw) != 2 {
		t.Errorf("expected raw metadata to be preserved, got %d entries", len(record.Raw))
	}
}

func TestExtract_NormalizedKeyMatching(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"style", "Modern"},
		{"Style", "Modern"},
		{"design-style", "Modern"},
		{"Design_Style", "Modern"},
		{" design style ", "Modern"},
	}

	for _, tc := range cases {
		record := Extract([]MetaEntry{entry(tc.key, tc.want)})
		if record == nil || record.Style == nil || *record.Style != tc.want {
			t.Errorf("key %q: expected style %q, got %+v", tc.key, tc.want, record)
		}
	}
}

func TestExtract_ExactMatchBeatsSubstring(t *testing.T) {
	// "product color option" contains the "color" alias as a substring, but
	// the exact "color" key elsewhere must win.
	meta := []MetaEntry{
		entry("product color option", "Wrong"),
		entry("color", "Navy"),
	}

	record := Extract(meta)
	if record == nil || record.Color == nil {
		t.Fatal("expected color to be extracted")
	}
	if *record.Color != "Navy" {
		t.Errorf("expected exact match Navy to win, got %q", *record.Color)
	}
}

func TestExtract_SubstringFallbackWhenNoExactMatch(t *testing.T) {
	meta := []MetaEntry{
		entry("Choose your font:", "Serif"),
	}

	record := Extract(meta)
	if record == nil || record.Font == nil || *record.Font != "Serif" {
		t.Fatalf("expected substring fallback to find font Serif, got %+v", record)
	}
}

func TestExtract_NameCountParsing(t *testing.T) {
	cases := []struct {
		value interface{}
		want  *int
	}{
		{"3 Names", intPtr(3)},
		{"1 Name", intPtr(1)},
		{"12 names", intPtr(12)},
		{"Names", nil},
		{"three names", nil},
	}

	for _, tc := range cases {
		meta := []MetaEntry{
			entry("Number of Names", tc.value),
			entry("Theme", "Safari"),
		}

		record := Extract(meta)
		if record == nil {
			t.Fatalf("value %v: expected a record (theme should still extract)", tc.value)
		}
		if record.Theme == nil || *record.Theme != "Safari" {
			t.Errorf("value %v: name-count parsing must not affect other fields", tc.value)
		}

		switch {
		case tc.want == nil && record.NameCount != nil:
			t.Errorf("value %v: expected no name count, got %d", tc.value, *record.NameCount)
		case tc.want != nil && (record.NameCount == nil || *record.NameCount != *tc.want):
			t.Errorf("value %v: expected name count %d, got %v", tc.value, *tc.want, record.NameCount)
		}
	}
}

func TestExtract_NameListParsing(t *testing.T) {
	meta := []MetaEntry{
		entry("Names", "Emma, Liam ,  Noah,,"),
	}

	record := Extract(meta)
	if record == nil {
		t.Fatal("expected a record")
	}

	want := []string{"Emma", "Liam", "Noah"}
	if !reflect.DeepEqual(record.Names, want) {
		t.Errorf("expected names %v, got %v", want, record.Names)
	}
}

func TestExtract_ScalarValuesStringified(t *testing.T) {
	meta := []MetaEntry{
		entry("size", float64(40)),
	}

	record := Extract(meta)
	if record == nil || record.Size == nil || *record.Size != "40" {
		t.Fatalf("expected numeric size to stringify as 40, got %+v", record)
	}
}

func TestExtract_IsDeterministic(t *testing.T) {
	meta := []MetaEntry{
		entry("style", "Classic"),
		entry("font", "Sans"),
		entry("names", "A,B"),
	}

	first := Extract(meta)
	second := Extract(meta)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction must be deterministic: %+v vs %+v", first, second)
	}
}

func intPtr(v int) *int { return &v }
