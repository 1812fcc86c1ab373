// Package export renders quizzes and graded results as printable PDFs.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"ragquiz/internal/grader"
	"ragquiz/internal/quiz"
)

var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title, subtitle string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, d.tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, d.tr(subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return d
}

func (d *document) question(n int, it quiz.Item) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.MultiCell(0, 6, d.tr(fmt.Sprintf("%d. [%s] %s", n, strings.ToUpper(string(it.Type)), it.Question)), "", "L", false)
	d.pdf.SetFont("Helvetica", "", 11)
	for i, opt := range it.Options {
		letter := "-"
		if i < len(optionLetters) {
			letter = optionLetters[i]
		}
		d.pdf.CellFormat(8, 6, "", "", 0, "L", false, 0, "")
		d.pdf.MultiCell(0, 6, d.tr(letter+") "+opt), "", "L", false)
	}
}

func (d *document) sources(srcs []string) {
	if len(srcs) == 0 {
		return
	}
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.MultiCell(0, 5, d.tr("Sources: "+strings.Join(srcs, ", ")), "", "L", false)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// QuizPDF renders a blank worksheet: questions, options and sources, with
// room to write answers.
func QuizPDF(q quiz.Quiz) ([]byte, error) {
	sub := "Topic: " + q.Topic
	if q.ID != "" {
		sub += " | Quiz " + q.ID
	}
	d := newDocument("Quiz Worksheet", sub)
	for i, it := range q.Items {
		d.question(i+1, it)
		d.pdf.SetFont("Helvetica", "", 11)
		d.pdf.CellFormat(0, 8, "Answer: ______________________________", "", 1, "L", false, 0, "")
		d.sources(it.Sources)
		d.pdf.Ln(3)
	}
	return d.bytes()
}

// ResultPDF renders a graded report with each answer, the expected answer
// and the grading rationale.
func ResultPDF(q quiz.Quiz, res grader.Result) ([]byte, error) {
	d := newDocument("Quiz Results",
		fmt.Sprintf("Topic: %s | Score: %d/%d (%.0f%%)", q.Topic, res.Score, res.Total, pct(res.Score, res.Total)))
	for i, det := range res.Details {
		if i < len(q.Items) {
			d.question(i+1, q.Items[i])
		} else {
			d.pdf.SetFont("Helvetica", "B", 11)
			d.pdf.MultiCell(0, 6, d.tr(fmt.Sprintf("%d. %s", i+1, det.Question)), "", "L", false)
		}
		status := "INCORRECT"
		if det.Correct {
			status = "CORRECT"
		}
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.MultiCell(0, 5, d.tr(fmt.Sprintf("%s | Your answer: %s | Expected: %s", status, formatResponse(det.YourAnswer), det.Expected)), "", "L", false)
		d.pdf.MultiCell(0, 5, d.tr(det.Rationale), "", "L", false)
		d.sources(det.Sources)
		d.pdf.Ln(3)
	}
	return d.bytes()
}

func formatResponse(v any) string {
	if v == nil {
		return "(none)"
	}
	return fmt.Sprint(v)
}

func pct(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) * 100 / float64(b)
}
