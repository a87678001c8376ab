package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantRemoved int
	}{
		{
			name: "plain text unchanged",
			in:   "Die Lehrerin unterrichtet Physik.",
			want: "Die Lehrerin unterrichtet Physik.",
		},
		{
			name: "dash runs collapse",
			in:   "Ost– und Westdeutschland —— damals",
			want: "Ost- und Westdeutschland - damals",
		},
		{
			name: "soft hyphens vanish",
			in:   "Leh­rerin",
			want: "Lehrerin",
		},
		{
			name: "newline runs become one space",
			in:   "erste Zeile\n\nzweite Zeile",
			want: "erste Zeile zweite Zeile",
		},
		{
			name:        "slashed alternative removed",
			in:          "Raumfahrer/Kosmonauten flogen mit.",
			want:        "Raumfahrer flogen mit.",
			wantRemoved: 1,
		},
		{
			name:        "spaced slash alternative removed",
			in:          "entweder / oder",
			want:        "entweder",
			wantRemoved: 1,
		},
		{
			name: "gender slash forms survive",
			in:   "Jeder Lehrer/in und alle Lehrer/-innen kamen.",
			want: "Jeder Lehrer/in und alle Lehrer/-innen kamen.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed %d alternatives, want %d", removed, tt.wantRemoved)
			}
		})
	}
}
