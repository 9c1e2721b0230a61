package session

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		line      string
		kind      Kind
		selectors int
	}{
		{"", Exit, 0},
		{"   ", Exit, 0},
		{"p 1 2", Print, 2},
		{"print 3", Print, 1},
		{"rs 1", ReviewSkim, 1},
		{"review-skim 1 2 3", ReviewSkim, 3},
		{"rd 2", ReviewDeep, 1},
		{"review-deep", ReviewDeep, 0},
		{"ls", ListAll, 0},
		{"list-all", ListAll, 0},
		{"lsu", ListUnreviewed, 0},
		{"list-unreviewed", ListUnreviewed, 0},
		{"frobnicate 1", Unknown, 0},
	}

	for _, tt := range tests {
		cmd := Parse(tt.line)
		if cmd.Kind != tt.kind {
			t.Errorf("Parse(%q).Kind = %d, want %d", tt.line, cmd.Kind, tt.kind)
		}
		if len(cmd.Selectors) != tt.selectors {
			t.Errorf("Parse(%q) selectors = %v, want %d tokens", tt.line, cmd.Selectors, tt.selectors)
		}
	}
}

func TestParse_UnknownKeepsWord(t *testing.T) {
	cmd := Parse("wat 1 2")
	if cmd.Kind != Unknown || cmd.Word != "wat" {
		t.Errorf("Parse = %+v, want Unknown/wat", cmd)
	}
}
