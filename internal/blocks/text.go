package blocks

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/figconv/internal/normalize"
	"github.com/inamate/figconv/internal/style"
)

// textElement renders a text node as one paragraph. Run colours are set per
// span; size and line height are shared and picked by majority vote.
func (b *Builder) textElement(n *normalize.Node) *Element {
	builder := style.For(n).CommonPosition().TextTrim().TextAlign()
	runs := style.Runs(n)

	var (
		spans    strings.Builder
		colorCSS []string
		runStyle []map[string]string
	)
	if len(runs) == 1 {
		builder.Append(runs[0].Style)
	}
	for i, run := range runs {
		s := run.Style.Map()
		runStyle = append(runStyle, s)

		color := s["color"]
		if color != "" {
			colorCSS = append(colorCSS, fmt.Sprintf(
				"#e_%%element-id%% .c > p:nth-of-type(1) > span:nth-of-type(%d){ color: %s; }", i+1, color))
		}
		if len(runs) > 1 && color != "" {
			fmt.Fprintf(&spans, `<span style="color: %s;">%s</span>`, color, run.Text)
		} else {
			fmt.Fprintf(&spans, "<span>%s</span>", run.Text)
		}
	}

	l := builder.List()
	e := b.newElement(n, classText, l)
	s := l.Map()

	fontSize, hasSize := majority(runStyle, "font-size")
	lineHeight, hasLineHeight := majority(runStyle, "line-height")
	if !hasLineHeight {
		lineHeight = "initial"
	}
	if !hasSize {
		fontSize = "16px"
	}
	lineHeight = textLineHeight(lineHeight, fontSize)

	var parts []string
	if hasSize {
		parts = append(parts, "font-size: "+fontSize+";")
	}
	parts = append(parts, "line-height: "+lineHeight+";")
	if align, ok := s["text-align"]; ok {
		parts = append(parts, "text-align: "+align+";")
	}
	parts = append(parts, "%z-index%")
	cssStyles := strings.Join(parts, " ")

	content := cleanContent(fmt.Sprintf(`<div class="conteudo %s" style="%s"><p>%s</p></div>`,
		classText, cssStyles, spans.String()))

	css := "#e_%element-id% .c { " + cssStyles + " }"
	if len(colorCSS) > 0 {
		css += " " + strings.Join(colorCSS, " ")
	}
	b.setContent(e, fragment(content), fragment(css))
	return e
}

// majority returns the most frequent value of key across runs. Ties go to
// the value seen first.
func majority(runs []map[string]string, key string) (string, bool) {
	var order []string
	counts := make(map[string]int)
	for _, s := range runs {
		v, ok := s[key]
		if !ok || v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount > 0
}

// textLineHeight turns a pixel line height into a unitless ratio of the
// font size, rounded up to one decimal and kept within [1, 2]; ratios under
// 1 fall back to 1.2. "initial" also maps to 1.2. Other values pass
// through.
func textLineHeight(lineHeight, fontSize string) string {
	if lineHeight == "initial" {
		return "1.2"
	}
	if !strings.HasSuffix(lineHeight, "px") {
		return lineHeight
	}

	lh, err := strconv.ParseFloat(strings.TrimSuffix(lineHeight, "px"), 64)
	if err != nil {
		return lineHeight
	}
	fs, err := strconv.ParseFloat(strings.TrimSuffix(fontSize, "px"), 64)
	if err != nil || fs == 0 {
		return lineHeight
	}

	ratio := math.Ceil(lh/fs*10) / 10
	switch {
	case ratio < 1:
		ratio = 1.2
	case ratio > 2:
		ratio = 2
	}
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}
