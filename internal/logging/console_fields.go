package logging

import (
	"log/slog"
	"sort"
	"strings"
)

type infoField struct {
	label string
	value string
}

// fieldRule controls how one attribute key renders at info level. Keys with a
// lower rank print first; unknown keys keep their call-site order after them.
type fieldRule struct {
	label  string
	rank   int
	hidden bool // counted in the "+N more" line, only shown at debug
	omit   bool // already in the header
}

const unrankedField = 1 << 10

var consoleFieldRules = map[string]fieldRule{
	FieldComponent:    {omit: true},
	FieldFile:         {omit: true},
	FieldRunID:        {hidden: true},
	"track_uid":       {hidden: true},
	"line":            {hidden: true},
	FieldEventType:    {label: "Event", rank: 1},
	FieldDecisionType: {label: "Decision", rank: 2},
	"decision_result": {label: "Decision", rank: 3},
	"decision_reason": {label: "Reason", rank: 4},
	"track_number":    {label: "Track", rank: 5},
	"track_type":      {label: "Type", rank: 6},
	"language":        {rank: 7},
	"field":           {rank: 8},
	"reason":          {rank: 9},
	"command":         {rank: 10},
	"error":           {rank: 11},
	FieldErrorHint:    {label: "Hint", rank: 12},
	FieldImpact:       {rank: 13},
	"outcome":         {rank: 14},
	"backup_path":     {rank: 15},
	"elapsed":         {rank: 16},
}

func ruleFor(key string) fieldRule {
	rule, ok := consoleFieldRules[key]
	if !ok {
		rule = fieldRule{rank: unrankedField, hidden: strings.HasSuffix(key, "_dir")}
	}
	if key == "" {
		rule.omit = true
	}
	if rule.label == "" {
		rule.label = titleizeKey(key)
	}
	return rule
}

// selectInfoFields orders the attributes worth showing at info level and
// counts the ones held back for debug output.
func selectInfoFields(attrs []kv) ([]infoField, int) {
	type ranked struct {
		rank  int
		field infoField
	}
	var shown []ranked
	hidden := 0
	for _, attr := range attrs {
		rule := ruleFor(attr.key)
		switch {
		case rule.omit:
		case rule.hidden:
			hidden++
		default:
			shown = append(shown, ranked{rule.rank, infoField{label: rule.label, value: consoleValue(attr.key, attr.value)}})
		}
	}
	sort.SliceStable(shown, func(i, j int) bool { return shown[i].rank < shown[j].rank })

	out := make([]infoField, len(shown))
	for i, r := range shown {
		out[i] = r.field
	}
	return out, hidden
}

func consoleValue(key string, v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindBool {
		return yesNo(v.Bool())
	}
	value := formatValue(v)
	if key == "error" || key == "output" {
		value = strings.TrimSpace(value)
		if len(value) > 200 {
			value = value[:200] + "…"
		}
	}
	return value
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// titleizeKey turns "backup_path" into "Backup Path".
func titleizeKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
