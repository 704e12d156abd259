package service

import (
	"strings"

	"familyhub_backend/internal/workflow/repository"
)

const defaultStageColor = "#94a3b8"

// statusCatalog maps the store's built-in order statuses to presentable stage
// names and colors. Unknown statuses fall back to a title-cased name with the
// default color.
var statusCatalog = map[string]struct {
	name  string
	color string
}{
	"pending":    {"Pending Payment", "#f59e0b"},
	"processing": {"Processing", "#3b82f6"},
	"on-hold":    {"On Hold", "#f97316"},
	"completed":  {"Completed", "#22c55e"},
	"cancelled":  {"Cancelled", "#6b7280"},
	"refunded":   {"Refunded", "#8b5cf6"},
	"failed":     {"Failed", "#ef4444"},
}

// defaultPipeline is the pipeline seeded for a new family. Terminal statuses
// start hidden so the board opens on actionable work.
var defaultPipeline = []struct {
	status string
	hidden bool
}{
	{"pending", false},
	{"processing", false},
	{"on-hold", false},
	{"completed", false},
	{"cancelled", true},
	{"refunded", true},
	{"failed", true},
}

// stageSpecForStatus synthesizes the stage to represent an external status.
func stageSpecForStatus(status string) repository.StageSpec {
	normalized := strings.ToLower(strings.TrimSpace(status))
	spec := repository.StageSpec{
		Name:           titleCase(normalized),
		Color:          defaultStageColor,
		ExternalStatus: &normalized,
	}
	if entry, ok := statusCatalog[normalized]; ok {
		spec.Name = entry.name
		spec.Color = entry.color
	}
	return spec
}

// titleCase turns a raw status slug into a readable name, e.g.
// "awaiting-stock" becomes "Awaiting Stock".
func titleCase(status string) string {
	words := strings.FieldsFunc(status, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	if len(words) == 0 {
		return status
	}
	return strings.Join(words, " ")
}
