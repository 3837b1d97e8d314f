package borg

import (
	"regexp"
	"strconv"
	"strings"
)

// Progress is one parsed progress update from the archiver's stream.
type Progress struct {
	BytesDone   int64
	CurrentFile string
}

// ProgressParser extracts transferred bytes and the current file from the
// archiver's free-text progress lines. The matching heuristic is isolated
// here so it can be swapped per archiver version without touching the sync
// state machine.
type ProgressParser struct{}

func NewProgressParser() *ProgressParser {
	return &ProgressParser{}
}

// Progress lines look like
//
//	1.2 GB O 890.1 MB C 120.4 MB D 1432 N data/ORDERS_FULL_20240101_020000.bak
//
// original size, compressed size, deduplicated size, file count, then the
// path currently being processed.
var progressLineRe = regexp.MustCompile(
	`^([\d.]+\s*[kKMGT]?i?B) O ([\d.]+\s*[kKMGT]?i?B) C ([\d.]+\s*[kKMGT]?i?B) D (\d+) N (.*)$`)

// Parse returns the update carried by line, and false for lines that are
// not progress output.
func (p *ProgressParser) Parse(line string) (Progress, bool) {
	m := progressLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Progress{}, false
	}

	bytesDone, ok := parseHumanSize(m[1])
	if !ok {
		return Progress{}, false
	}
	return Progress{
		BytesDone:   bytesDone,
		CurrentFile: strings.TrimSpace(m[5]),
	}, true
}

// parseHumanSize converts "890.1 MB" style sizes to bytes.
func parseHumanSize(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i <= 0 {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil {
		return 0, false
	}

	var mult float64
	switch strings.ToUpper(strings.TrimSpace(s[i:])) {
	case "B":
		mult = 1
	case "KB":
		mult = 1e3
	case "MB":
		mult = 1e6
	case "GB":
		mult = 1e9
	case "TB":
		mult = 1e12
	case "KIB":
		mult = 1 << 10
	case "MIB":
		mult = 1 << 20
	case "GIB":
		mult = 1 << 30
	case "TIB":
		mult = 1 << 40
	default:
		return 0, false
	}

	return int64(value * mult), true
}
