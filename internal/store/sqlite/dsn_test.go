package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute", input: "sqlite:///var/lib/worldsmith.db", expected: "/var/lib/worldsmith.db"},
		{name: "dot relative", input: "sqlite://./worldsmith.db", expected: "./worldsmith.db"},
		{name: "bare relative", input: "sqlite://data/worldsmith.db", expected: "./data/worldsmith.db"},
		{name: "escaped", input: "sqlite://my%20worlds.db", expected: "./my worlds.db"},
		{name: "query kept", input: "sqlite://worlds.db?_pragma=foreign_keys(1)", expected: "./worlds.db?_pragma=foreign_keys(1)"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
