package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is an inclusive byte span, as used in HTTP Range headers.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Len() int64 { return r.End - r.Start + 1 }

func (r ByteRange) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// NextRange returns the chunk that starts at offset. When total is unknown
// (<= 0) the chunk is not clamped.
func NextRange(offset, total int64, chunkSize int) ByteRange {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	end := offset + int64(chunkSize) - 1
	if total > 0 && end >= total {
		end = total - 1
	}
	return ByteRange{Start: offset, End: end}
}

// ParseContentRange reads a "bytes start-end/total" header. total is -1
// when the server reports it as "*".
func ParseContentRange(v string) (ByteRange, int64, error) {
	v = strings.TrimSpace(v)
	rest, ok := strings.CutPrefix(v, "bytes ")
	if !ok {
		return ByteRange{}, 0, fmt.Errorf("content-range %q: missing unit", v)
	}
	span, size, ok := strings.Cut(rest, "/")
	if !ok {
		return ByteRange{}, 0, fmt.Errorf("content-range %q: missing size", v)
	}
	a, b, ok := strings.Cut(span, "-")
	if !ok {
		return ByteRange{}, 0, fmt.Errorf("content-range %q: bad span", v)
	}
	start, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return ByteRange{}, 0, fmt.Errorf("content-range %q: %w", v, err)
	}
	end, err := strconv.ParseInt(b, 10, 64)
	if err != nil || end < start {
		return ByteRange{}, 0, fmt.Errorf("content-range %q: bad span", v)
	}
	total := int64(-1)
	if size != "*" {
		total, err = strconv.ParseInt(size, 10, 64)
		if err != nil {
			return ByteRange{}, 0, fmt.Errorf("content-range %q: %w", v, err)
		}
	}
	return ByteRange{Start: start, End: end}, total, nil
}
