package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// gofpdf attaches this ToUnicode CMap to every embedded UTF-8 font. Its single
// bfrange spans <0000>..<FFFF>, but a bfrange may only vary in its last byte,
// so readers that follow the CMap format decode every code as U+0000..U+00FF.
const (
	cmapHeader = "/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n" +
		"/CIDSystemInfo\n<</Registry (Adobe)\n/Ordering (UCS)\n/Supplement 0\n>> def\n" +
		"/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n" +
		"1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n"
	cmapFooter = "endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend"

	gofpdfToUnicode = cmapHeader + "1 beginbfrange\n<0000> <FFFF> <0000>\nendbfrange\n" + cmapFooter
)

// xrefEntrySize is the fixed width of a cross-reference entry, end of line included.
const xrefEntrySize = 20

// identityToUnicode maps every two-byte code to the same UTF-16 value with one
// bfrange per high byte, at most 100 ranges per block.
var identityToUnicode = func() string {
	var b strings.Builder
	b.WriteString(cmapHeader)
	for start := 0; start < 256; start += 100 {
		end := min(start+100, 256)
		fmt.Fprintf(&b, "%d beginbfrange\n", end-start)
		for hi := start; hi < end; hi++ {
			fmt.Fprintf(&b, "<%02X00> <%02XFF> <%02X00>\n", hi, hi, hi)
		}
		b.WriteString("endbfrange\n")
	}
	b.WriteString(cmapFooter)
	return b.String()
}()

func cmapStream(data string) []byte {
	return []byte(fmt.Sprintf("<</Length %d>>\nstream\n%s\nendstream", len(data), data))
}

// fixToUnicode replaces every gofpdf ToUnicode stream in doc with
// identityToUnicode and moves the cross-reference offsets that follow.
// Documents without such a stream are returned unchanged.
func fixToUnicode(doc []byte) ([]byte, error) {
	old, repl := cmapStream(gofpdfToUnicode), cmapStream(identityToUnicode)
	if !bytes.Contains(doc, old) {
		return doc, nil
	}
	xref, err := startXref(doc)
	if err != nil {
		return nil, err
	}

	var (
		out bytes.Buffer
		at  []int
		pos int
	)
	out.Grow(len(doc) + 2*(len(repl)-len(old)))
	for {
		i := bytes.Index(doc[pos:], old)
		if i < 0 || pos+i > xref {
			break
		}
		out.Write(doc[pos : pos+i])
		out.Write(repl)
		at = append(at, pos+i)
		pos += i + len(old)
	}
	out.Write(doc[pos:])

	delta := len(repl) - len(old)
	shift := func(off int) int {
		n := 0
		for _, p := range at {
			if p < off {
				n++
			}
		}
		return off + n*delta
	}

	fixed := out.Bytes()
	newXref := shift(xref)
	if err := shiftXref(fixed, newXref, shift); err != nil {
		return nil, err
	}
	tail := bytes.LastIndex(fixed, []byte("startxref\n"))
	fixed = append(fixed[:tail:tail], fmt.Sprintf("startxref\n%d\n%%%%EOF\n", newXref)...)
	return fixed, nil
}

// startXref returns the offset recorded after the last startxref keyword.
func startXref(doc []byte) (int, error) {
	i := bytes.LastIndex(doc, []byte("startxref\n"))
	if i < 0 {
		return 0, errors.New("pdf has no startxref")
	}
	rest := doc[i+len("startxref\n"):]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		return 0, errors.New("pdf startxref is truncated")
	}
	off, err := strconv.Atoi(string(rest[:end]))
	if err != nil || off < 0 || off >= i {
		return 0, fmt.Errorf("pdf startxref %q is invalid", rest[:end])
	}
	return off, nil
}

// shiftXref rewrites the in-use entries of the table at offset at in place.
func shiftXref(doc []byte, at int, shift func(int) int) error {
	if !bytes.HasPrefix(doc[at:], []byte("xref\n")) {
		return errors.New("pdf xref table not found")
	}
	p := at + len("xref\n")
	nl := bytes.IndexByte(doc[p:], '\n')
	if nl < 0 {
		return errors.New("pdf xref header is truncated")
	}
	var first, count int
	if _, err := fmt.Sscanf(string(doc[p:p+nl]), "%d %d", &first, &count); err != nil {
		return fmt.Errorf("pdf xref header: %w", err)
	}
	p += nl + 1
	if p+count*xrefEntrySize > len(doc) {
		return errors.New("pdf xref table is truncated")
	}
	for i := 0; i < count; i++ {
		entry := doc[p+i*xrefEntrySize : p+(i+1)*xrefEntrySize]
		if entry[17] != 'n' {
			continue
		}
		off, err := strconv.Atoi(string(entry[:10]))
		if err != nil {
			return fmt.Errorf("pdf xref entry %d: %w", first+i, err)
		}
		copy(entry[:10], fmt.Sprintf("%010d", shift(off)))
	}
	return nil
}
