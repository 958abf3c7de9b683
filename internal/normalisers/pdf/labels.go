package pdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxLabelTreeDepth bounds recursion through /Kids of the labels number tree.
const maxLabelTreeDepth = 32

var errLabelTreeTooDeep = errors.New("page label tree too deep")

// labelRange is one entry of a document's /PageLabels number tree. It
// applies from the zero-based page index start until the next range.
type labelRange struct {
	start  int
	style  string
	prefix string
	first  int
}

// labeler maps zero-based page indexes to printed page labels.
type labeler []labelRange

// label returns the label of page index. Without a covering range the
// label is the one-based page number.
func (l labeler) label(index int) string {
	var current *labelRange
	for i := range l {
		if l[i].start <= index && (current == nil || l[i].start >= current.start) {
			current = &l[i]
		}
	}
	if current == nil {
		return strconv.Itoa(index + 1)
	}

	n := current.first + index - current.start
	var number string
	switch current.style {
	case "D":
		number = strconv.Itoa(n)
	case "R":
		number = strings.ToUpper(roman(n))
	case "r":
		number = roman(n)
	case "A":
		number = letters(n)
	case "a":
		number = strings.ToLower(letters(n))
	}
	return current.prefix + number
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// roman formats n as a lowercase roman numeral.
func roman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// letters formats n as A..Z, then AA..ZZ, AAA.. as page labels do.
func letters(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	letter := string(rune('A' + (n-1)%26))
	return strings.Repeat(letter, (n-1)/26+1)
}

// readPageLabels returns the /PageLabels ranges of the PDF at path, or nil
// if the document declares none.
func readPageLabels(path string) (labeler, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, err
	}
	root, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	tree, found := root.Find("PageLabels")
	if !found {
		return nil, nil
	}

	var ranges labeler
	if err := collectLabelRanges(ctx.XRefTable, tree, &ranges, 0); err != nil {
		return nil, err
	}
	return ranges, nil
}

// collectLabelRanges walks a number tree node, appending its /Nums entries
// and descending into /Kids.
func collectLabelRanges(xref *model.XRefTable, node types.Object, out *labeler, depth int) error {
	if depth > maxLabelTreeDepth {
		return errLabelTreeTooDeep
	}
	d, err := xref.DereferenceDict(node)
	if err != nil || d == nil {
		return err
	}

	if kids, found := d.Find("Kids"); found {
		arr, err := xref.DereferenceArray(kids)
		if err != nil {
			return err
		}
		for _, kid := range arr {
			if err := collectLabelRanges(xref, kid, out, depth+1); err != nil {
				return err
			}
		}
	}

	nums, found := d.Find("Nums")
	if !found {
		return nil
	}
	arr, err := xref.DereferenceArray(nums)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(arr); i += 2 {
		start, err := xref.Dereference(arr[i])
		if err != nil {
			return err
		}
		key, ok := start.(types.Integer)
		if !ok {
			return fmt.Errorf("page label key %v is not an integer", start)
		}
		entry, err := xref.DereferenceDict(arr[i+1])
		if err != nil {
			return err
		}
		r, err := parseLabelDict(xref, entry)
		if err != nil {
			return err
		}
		r.start = key.Value()
		*out = append(*out, r)
	}
	return nil
}

// parseLabelDict reads the /S, /P and /St entries of a page label dictionary.
func parseLabelDict(xref *model.XRefTable, d types.Dict) (labelRange, error) {
	r := labelRange{first: 1}
	if d == nil {
		return r, nil
	}

	if o, found := d.Find("S"); found {
		v, err := xref.Dereference(o)
		if err != nil {
			return r, err
		}
		if name, ok := v.(types.Name); ok {
			r.style = name.Value()
		}
	}

	if o, found := d.Find("P"); found {
		v, err := xref.Dereference(o)
		if err != nil {
			return r, err
		}
		switch p := v.(type) {
		case types.StringLiteral:
			if r.prefix, err = types.StringLiteralToString(p); err != nil {
				return r, err
			}
		case types.HexLiteral:
			if r.prefix, err = types.HexLiteralToString(p); err != nil {
				return r, err
			}
		}
	}

	if o, found := d.Find("St"); found {
		v, err := xref.Dereference(o)
		if err != nil {
			return r, err
		}
		if st, ok := v.(types.Integer); ok && st.Value() > 0 {
			r.first = st.Value()
		}
	}
	return r, nil
}
