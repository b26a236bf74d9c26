package pdfmeta

import (
	"bytes"
	"regexp"
	"strconv"
)

// LinearizationScanLimit bounds how far into a file the linearization
// dictionary may start.
const LinearizationScanLimit = 1024

// Linearization holds the fields of a linearization parameter dictionary
// that a progressive reader needs.
type Linearization struct {
	FileLength      int64 // /L
	PageCount       int   // /N
	FirstPageEnd    int64 // /E
	FirstPageObject int   // /O
}

var (
	linearizedKey = []byte("/Linearized")
	linParamRe    = regexp.MustCompile(`/([LNEO])\s+(\d+)`)
)

// ParseLinearization looks for the linearization dictionary at the head of
// a file. prefix may be any leading slice of the document.
func ParseLinearization(prefix []byte) (Linearization, bool) {
	head := prefix
	if len(head) > LinearizationScanLimit {
		head = head[:LinearizationScanLimit]
	}
	at := bytes.Index(head, linearizedKey)
	if at < 0 {
		return Linearization{}, false
	}
	dict := prefix[at:]
	if end := bytes.Index(dict, []byte(">>")); end >= 0 {
		dict = dict[:end]
	} else {
		return Linearization{}, false
	}

	var lin Linearization
	seen := map[string]bool{}
	for _, m := range linParamRe.FindAllSubmatch(dict, -1) {
		key := string(m[1])
		v, err := strconv.ParseInt(string(m[2]), 10, 64)
		if err != nil || seen[key] {
			continue
		}
		seen[key] = true
		switch key {
		case "L":
			lin.FileLength = v
		case "N":
			lin.PageCount = int(v)
		case "E":
			lin.FirstPageEnd = v
		case "O":
			lin.FirstPageObject = int(v)
		}
	}
	if !seen["L"] || !seen["N"] || lin.PageCount < 1 {
		return Linearization{}, false
	}
	return lin, true
}
