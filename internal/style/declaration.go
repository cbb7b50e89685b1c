// Package style computes CSS declarations for normalized nodes. Both
// renderers share it, so every rule lives here exactly once.
package style

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

func (d Declaration) String() string {
	return d.Property + ": " + d.Value
}

// List is an ordered declaration list. Duplicates are kept; lookups return
// the first occurrence.
type List []Declaration

// Add appends a declaration unless the value is empty.
func (l *List) Add(property, value string) {
	if value == "" {
		return
	}
	*l = append(*l, Declaration{Property: property, Value: value})
}

// AddPx appends a pixel declaration. Zero is a valid value here.
func (l *List) AddPx(property string, v float64) {
	*l = append(*l, Declaration{Property: property, Value: Px(v)})
}

// AddPxNonZero appends a pixel declaration only for non-zero values.
func (l *List) AddPxNonZero(property string, v float64) {
	if v == 0 {
		return
	}
	l.AddPx(property, v)
}

func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// Get returns the value of the first declaration for property.
func (l List) Get(property string) (string, bool) {
	for _, d := range l {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

// Map returns property → value, keeping the first occurrence of each.
func (l List) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, d := range l {
		if _, ok := m[d.Property]; !ok {
			m[d.Property] = d.Value
		}
	}
	return m
}

// String joins the declarations with "; ", the form used inside a style
// attribute.
func (l List) String() string {
	parts := make([]string, 0, len(l))
	for _, d := range l {
		parts = append(parts, strings.TrimSpace(d.String()))
	}
	return strings.Join(parts, "; ")
}

// Attr renders the list as a leading-space style attribute, or "" when
// empty.
func (l List) Attr() string {
	if len(l) == 0 {
		return ""
	}
	return ` style="` + l.String() + `"`
}

// Fixed formats v with two decimals, dropping only an exact ".00":
// 10 → "10", 0.5 → "0.50", 1.234 → "1.23".
func Fixed(v float64) string {
	return strings.TrimSuffix(toFixed(v, 2), ".00")
}

// toFixed formats v with the given number of decimals. Ties round away
// from zero, unlike strconv which rounds them to even.
func toFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}

	// The product of a float64 and a small power of ten is exact at this
	// precision, so ties are detected exactly.
	scaled := new(big.Float).SetPrec(256).SetFloat64(v)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetFloat64(math.Pow10(digits)))
	n, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	s := n.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	return sign + s
}

// Px is Fixed with a "px" unit.
func Px(v float64) string {
	return Fixed(v) + "px"
}

// raw formats a number the way a script runtime prints it: shortest
// round-trip form, no fixed precision.
func raw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseDeclarations reads an inline style string ("a: b; c: d") back into
// a list. Values keep their original spelling, url() and functions intact.
func ParseDeclarations(s string) List {
	var l List
	p := css.NewParser(parse.NewInput(strings.NewReader(s)), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return l
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var value strings.Builder
			for _, tok := range p.Values() {
				value.Write(tok.Data)
			}
			l.Add(string(data), strings.TrimSpace(value.String()))
		}
	}
}
