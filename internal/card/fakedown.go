package card

import (
	"regexp"
	"strings"
)

type inlineRule struct {
	pattern *regexp.Regexp
	tag     string
}

func delimited(fence, class, tag string) inlineRule {
	return inlineRule{
		pattern: regexp.MustCompile(fence + `([^` + class + `]+)` + fence),
		tag:     tag,
	}
}

// Applied in order: doubled markers before single ones.
var inlineRules = []inlineRule{
	delimited(`##`, `#`, "h3"),
	delimited(`~~`, `~`, "s"),
	delimited(`__`, `_`, "strong"),
	delimited(`\*\*`, `*`, "strong"),
	delimited(`_`, `_`, "em"),
	delimited(`\*`, `*`, "em"),
}

var dashPattern = regexp.MustCompile(`([^-])--([^-])`)

// RenderText converts card text markup to HTML. Text starting with a
// backtick is preformatted verbatim. Embedded HTML is passed through.
func RenderText(text string) string {
	if strings.HasPrefix(text, "`") {
		return "<pre>" + text[1:] + "</pre>"
	}
	text = dashPattern.ReplaceAllString(text, "${1}—${2}")
	for _, rule := range inlineRules {
		text = rule.pattern.ReplaceAllString(text, "<"+rule.tag+">${1}</"+rule.tag+">")
	}
	return strings.ReplaceAll(text, "\n", "<br>")
}
