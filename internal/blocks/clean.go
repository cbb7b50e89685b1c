package blocks

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	with string
}

// contentRewrites collapse the whitespace around tags so element content is
// a single line. Applied in order.
var contentRewrites = func() []rewrite {
	rules := []struct{ pattern, with string }{
		{`\t`, ""},
		{`\n`, " "},
	}
	for _, tag := range []string{"div", "img", "label", "input", "h1", "h2", "h3", "h4", "h5", "h6", "span"} {
		rules = append(rules, struct{ pattern, with string }{` *<` + tag, "<" + tag})
		if tag != "img" && tag != "input" {
			rules = append(rules, struct{ pattern, with string }{` *</` + tag, "</" + tag})
		}
	}
	rules = append(rules, []struct{ pattern, with string }{
		{`<span> *`, "<span>"},
		{`> *<p`, "><p"},
		{`> *`, ">"},
		{`</span><span`, "</span> <span"},
		{`</b>`, "</b> "},
		{` {3}`, " "},
	}...)

	out := make([]rewrite, 0, len(rules))
	for _, r := range rules {
		out = append(out, rewrite{re: regexp.MustCompile(`(?i)` + r.pattern), with: r.with})
	}
	return out
}()

// cleanContent flattens element markup onto one line.
func cleanContent(s string) string {
	for _, r := range contentRewrites {
		s = r.re.ReplaceAllLiteralString(s, r.with)
	}
	// Only the first double space is collapsed.
	if i := strings.Index(s, "  "); i >= 0 {
		s = s[:i] + " " + s[i+2:]
	}
	return s
}
