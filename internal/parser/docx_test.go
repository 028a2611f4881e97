package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDOCXParser_ParagraphsAndTable(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("项目名称")

	tbl := w.AddTable(2, 2, 0, nil)
	cells := [][]string{{"Name", "Budget"}, {"Alpha", "100"}}
	for i, row := range tbl.TableRows {
		for j, cell := range row.TableCells {
			cell.AddParagraph().AddText(cells[i][j])
		}
	}
	w.AddParagraph().AddText("After table")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXParser{}
	got, err := p.Parse(bytes.NewReader(buf.Bytes()), "table.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "项目名称\nName\tBudget\nAlpha\t100\nAfter table"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDOCXParser_EmptyCells(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	tbl := w.AddTable(1, 3, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("left")
	tbl.TableRows[0].TableCells[2].AddParagraph().AddText("right")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXParser{}
	got, err := p.Parse(bytes.NewReader(buf.Bytes()), "sparse.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "left\t\tright" {
		t.Errorf("expected %q, got %q", "left\t\tright", got)
	}
}
