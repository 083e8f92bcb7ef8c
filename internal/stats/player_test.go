package stats

import "testing"

func TestParsePlayerID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PlayerID
		wantErr bool
	}{
		{name: "site path", input: "/players/b/bryanko01.html", want: "bryanko01"},
		{name: "full url", input: "https://www.basketball-reference.com/players/w/wallabe01.html", want: "wallabe01"},
		{name: "bare code", input: "mutomdi01", want: "mutomdi01"},
		{name: "upper case and spaces", input: "  OlajuHa01 ", want: "olajuha01"},
		{name: "query string", input: "/players/r/robinda01.html?lang=en", want: "robinda01"},
		{name: "empty", input: "", wantErr: true},
		{name: "non player path", input: "/coaches/p/popovgr99c.html", wantErr: true},
		{name: "punctuation", input: "o'neal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlayerID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePlayerID(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlayerID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlayerID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlayerIDPath(t *testing.T) {
	id := PlayerID("bryanko01")
	if got := id.Path(); got != "/players/b/bryanko01.html" {
		t.Errorf("Path() = %q, want /players/b/bryanko01.html", got)
	}

	back, err := ParsePlayerID(id.Path())
	if err != nil {
		t.Fatalf("ParsePlayerID(Path()) error: %v", err)
	}
	if back != id {
		t.Errorf("round trip = %q, want %q", back, id)
	}

	if PlayerID("").Path() != "" {
		t.Error("empty id should have empty path")
	}
}
