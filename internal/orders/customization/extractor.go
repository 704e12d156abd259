// Package customization extracts structured product-customization attributes
// from the unstructured line-item metadata that arrives with imported orders.
// Extraction is deterministic and side-effect free so it can be re-run as a
// backfill at any time.
package customization

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MetaEntry is one key/value pair of raw order metadata.
type MetaEntry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Record holds the attributes recognized in an order's metadata. Every field
// is optional; a record with no recognized fields is never produced (Extract
// returns nil instead).
type Record struct {
	Style     *string     `json:"style,omitempty"`
	Font      *string     `json:"font,omitempty"`
	Color     *string     `json:"color,omitempty"`
	NameColor *string     `json:"nameColor,omitempty"`
	NameCount *int        `json:"nameCount,omitempty"`
	Names     []string    `json:"names,omitempty"`
	Theme     *string     `json:"theme,omitempty"`
	Size      *string     `json:"size,omitempty"`
	Raw       []MetaEntry `json:"raw"`
}

// Field label aliases, in priority order. Matching is fuzzy: labels and
// aliases are compared after lower-casing and stripping spaces, hyphens and
// underscores.
var (
	styleAliases     = []string{"style", "design style", "product style", "design"}
	fontAliases      = []string{"font", "font style", "font choice", "lettertype"}
	colorAliases     = []string{"color", "colour", "product color", "kleur"}
	nameColorAliases = []string{"name color", "name colour", "text color", "naam kleur"}
	nameCountAliases = []string{"number of names", "name count", "aantal namen", "how many names"}
	nameListAliases  = []string{"names", "name list", "namen", "enter names"}
	themeAliases     = []string{"theme", "design theme", "thema"}
	sizeAliases      = []string{"size", "product size", "maat", "formaat"}
)

var nameCountRe = regexp.MustCompile(`^(\d+)\s*[Nn]ames?\b`)

// Extract derives a customization record from raw metadata. It returns nil
// when no target field matches: callers must treat nil as "no customization
// detected", which is distinct from an empty record.
func Extract(meta []MetaEntry) *Record {
	if len(meta) == 0 {
		return nil
	}

	style := matchField(meta, styleAliases)
	font := matchField(meta, fontAliases)
	color := matchField(meta, colorAliases)
	nameColor := matchField(meta, nameColorAliases)
	theme := matchField(meta, themeAliases)
	size := matchField(meta, sizeAliases)

	var nameCount *int
	if raw := matchField(meta, nameCountAliases); raw != nil {
		nameCount = parseNameCount(*raw)
	}

	var names []string
	if raw := matchField(meta, nameListAliases); raw != nil {
		names = parseNameList(*raw)
	}

	if style == nil && font == nil && color == nil && nameColor == nil &&
		nameCount == nil && len(names) == 0 && theme == nil && size == nil {
		return nil
	}

	return &Record{
		Style:     style,
		Font:      font,
		Color:     color,
		NameColor: nameColor,
		NameCount: nameCount,
		Names:     names,
		Theme:     theme,
		Size:      size,
		Raw:       meta,
	}
}

// matchField resolves one target field against the metadata using two passes:
// exact normalized key matches win outright; substring containment (in either
// direction) is only consulted when no exact match exists anywhere for the
// field, so a loose alias cannot shadow a more specific exact match.
func matchField(meta []MetaEntry, aliases []string) *string {
	for _, alias := range aliases {
		normalizedAlias := normalizeKey(alias)
		for _, entry := range meta {
			if normalizeKey(entry.Key) == normalizedAlias {
				if value := stringValue(entry.Value); value != "" {
					return &value
				}
			}
		}
	}

	for _, alias := range aliases {
		normalizedAlias := normalizeKey(alias)
		for _, entry := range meta {
			key := normalizeKey(entry.Key)
			if key == "" {
				continue
			}
			if strings.Contains(key, normalizedAlias) || strings.Contains(normalizedAlias, key) {
				if value := stringValue(entry.Value); value != "" {
					return &value
				}
			}
		}
	}

	return nil
}

func normalizeKey(key string) string {
	lowered := strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(lowered)
}

func stringValue(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", typed))
	}
}

// parseNameCount reads a leading integer before the word "name(s)", e.g.
// "3 Names" -> 3. Unparseable values yield no count without affecting the
// extraction of other fields.
func parseNameCount(value string) *int {
	m := nameCountRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &count
}

func parseNameList(value string) []string {
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
