package analysis

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// readXLSX reads the selected sheet of an .xlsx file into a Table.
// With no sheet name and SheetIndex <= 0 the first sheet is used.
func readXLSX(path string, opt TableOptions) (*Table, error) {
	wb, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(path))
	}
	t := &Table{Name: filepath.Base(path)}
	rr := newSheetRowReader(wb.file(target), wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return t, nil
	}
	t.setHeader(header)
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		t.add(row, opt)
	}
	t.finish()
	return t, nil
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

type workbook struct {
	zr     *zip.Reader
	sheets []wbSheet
	rels   map[string]string
	shared []string
}

func openWorkbook(path string) (*workbook, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseWorkbook(wb.file("xl/workbook.xml"))
	wb.rels = parseRelationships(wb.file("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.file("xl/sharedStrings.xml"))
	return wb, nil
}

// SheetNames lists the sheets in workbook order.
func (wb *workbook) SheetNames() []string {
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.Name
	}
	return out
}

var errSheetNotFound = errors.New("sheet not found")

func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
				break
			}
		}
		return "", fmt.Errorf("%w: '%s'. Available sheets: %s", errSheetNotFound, name, strings.Join(wb.SheetNames(), ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

func (wb *workbook) file(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// eachStart calls fn for every start element in data.
func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id":
				s.RID = a.Value // r: namespace
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	cur    []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next <row> as a dense slice; missing cells are "".
func (r *sheetRowReader) Next() ([]string, bool) {
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				r.cur = nil
				continue
			}
			if !inRow || se.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := colIndexFromRef(ref)
			if col < 0 {
				col = len(r.cur)
			}
			val := r.cellValue(typ)
			for len(r.cur) <= col {
				r.cur = append(r.cur, "")
			}
			r.cur[col] = val
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return r.cur, true
			}
		}
	}
}

// cellValue consumes tokens up to </c> and returns the text of <v> or
// inline <is><t>, resolving shared-string indices.
func (r *sheetRowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// colIndexFromRef maps a cell ref like "C12" to its 0-based column (2).
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship Target paths to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml") or be
// relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
