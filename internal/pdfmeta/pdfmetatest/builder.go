// Package pdfmetatest builds small, structurally valid PDF documents for
// tests.
package pdfmetatest

import (
	"bytes"
	"fmt"
	"strings"
)

type Options struct {
	Pages int
	// Linearized writes a linearization dictionary as the first object.
	// The file is not truly linearized; only the header hint is present.
	Linearized bool
	// Padding adds roughly this many bytes of comment lines after the
	// page objects.
	Padding int
}

// Build returns the bytes of a PDF with opts.Pages empty letter-size pages.
func Build(opts Options) []byte {
	if opts.Pages < 1 {
		opts.Pages = 1
	}
	out := build(opts, 0, 0)
	firstPageEnd := firstPageEndOffset(out, opts)
	return build(opts, int64(len(out)), firstPageEnd)
}

func firstPageEndOffset(b []byte, opts Options) int64 {
	marker := []byte("4 0 obj")
	at := bytes.Index(b, marker)
	if at < 0 {
		return 0
	}
	end := bytes.Index(b[at:], []byte("endobj\n"))
	return int64(at + end + len("endobj\n"))
}

func build(opts Options, length, firstPageEnd int64) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, opts.Pages+3)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	if opts.Linearized {
		obj(fmt.Sprintf("<< /Linearized 1 /L %010d /H [ 0 0 ] /O 4 /E %010d /N %d /T 0 >>", length, firstPageEnd, opts.Pages))
	} else {
		obj("<< /Producer (linview test) >>")
	}
	obj("<< /Type /Catalog /Pages 3 0 R >>")

	kids := make([]string, 0, opts.Pages)
	for i := 0; i < opts.Pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+i))
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [ %s ] /Count %d >>", strings.Join(kids, " "), opts.Pages))
	for i := 0; i < opts.Pages; i++ {
		obj("<< /Type /Page /Parent 3 0 R /MediaBox [ 0 0 612 792 ] /Resources << >> >>")
	}

	line := "%" + strings.Repeat("x", 78) + "\n"
	for n := 0; n < opts.Padding; n += len(line) {
		buf.WriteString(line)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 2 0 R", len(offsets)+1)
	if !opts.Linearized {
		buf.WriteString(" /Info 1 0 R")
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}
