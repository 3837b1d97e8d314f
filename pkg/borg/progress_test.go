package borg

import "testing"

func TestProgressParserParse(t *testing.T) {
	parser := NewProgressParser()

	tests := []struct {
		name   string
		line   string
		want   Progress
		wantOk bool
	}{
		{
			name:   "standard progress line",
			line:   "1.2 GB O 890.1 MB C 120.4 MB D 1432 N data/ORDERS_FULL_20240101_020000.bak",
			want:   Progress{BytesDone: 1200000000, CurrentFile: "data/ORDERS_FULL_20240101_020000.bak"},
			wantOk: true,
		},
		{
			name:   "binary units",
			line:   "512.0 MiB O 100.0 MiB C 50.0 MiB D 12 N stock/dump.bak",
			want:   Progress{BytesDone: 512 << 20, CurrentFile: "stock/dump.bak"},
			wantOk: true,
		},
		{
			name:   "leading whitespace",
			line:   "  10.0 kB O 1.0 kB C 1.0 kB D 1 N a.bak",
			want:   Progress{BytesDone: 10000, CurrentFile: "a.bak"},
			wantOk: true,
		},
		{name: "summary line", line: "Archive name: backups-2024-01-01-1704074400", wantOk: false},
		{name: "empty", line: "", wantOk: false},
		{name: "unparsable size", line: "huge O 1 MB C 1 MB D 1 N x", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.Parse(tt.line)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseHumanSize(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOk bool
	}{
		{"0 B", 0, true},
		{"123 B", 123, true},
		{"1.5 kB", 1500, true},
		{"890.1 MB", 890100000, true},
		{"2 GB", 2000000000, true},
		{"1 TB", 1000000000000, true},
		{"1 KiB", 1024, true},
		{"3 GiB", 3 << 30, true},
		{"", 0, false},
		{"MB", 0, false},
		{"12 XB", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseHumanSize(tt.in)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("parseHumanSize(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}
