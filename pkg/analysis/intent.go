// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package analysis

import (
	"regexp"
	"strings"

	"github.com/fegome90-cmd/prompt-raycast-ext-sub001/pkg/types"
)

// intentRule binds an intent to its keyword pattern. Rules are ordered;
// the first match wins, so EXPLAIN keywords take precedence over DEBUG,
// which takes precedence over REFACTOR. Anything unmatched is GENERATE.
type intentRule struct {
	intent  types.IntentType
	pattern *regexp.Regexp
}

// The EXPLAIN set carries Spanish review/audit vocabulary because the
// request surface is bilingual.
var intentRules = []intentRule{
	{types.IntentExplain, keywordPattern(
		"explain", "how does", "why",
		"revisar", "revisión", "auditoría", "analizar",
		"examine", "review", "audit")},
	{types.IntentDebug, keywordPattern(
		"fix", "debug", "error", "bug", "broken", "failing", "exception")},
	{types.IntentRefactor, keywordPattern(
		"refactor", "optimize", "clean up", "restructure", "improve")},
}

// keywordPattern builds a case-insensitive word-boundary alternation.
// Multi-word keywords match as whole phrases.
func keywordPattern(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// ClassifyIntent determines the request intent from the combined
// idea + context text. Defaults to GENERATE when no rule matches.
func ClassifyIntent(idea, context string) types.IntentType {
	combined := combinedText(idea, context)
	for _, rule := range intentRules {
		if rule.pattern.MatchString(combined) {
			return rule.intent
		}
	}
	return types.IntentGenerate
}
