package arcwizard

import "testing"

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		want [2]string
	}{
		{"Rossi", [2]string{"ARC-ROSSI-1", "ARC-ROSSI-2"}},
		{"D'Àmico", [2]string{"ARC-DAMICO-1", "ARC-DAMICO-2"}},
		{"Núñez", [2]string{"ARC-NUNEZ-1", "ARC-NUNEZ-2"}},
		{"Müller-Lüdenscheidt", [2]string{"ARC-MULLERLUDENSCHEIDT-1", "ARC-MULLERLUDENSCHEIDT-2"}},
		{"de la Cruz 2", [2]string{"ARC-DELACRUZ2-1", "ARC-DELACRUZ2-2"}},
		{"!!!", [2]string{"ARC-ARC-1", "ARC-ARC-2"}},
		{"", [2]string{"ARC-ARC-1", "ARC-ARC-2"}},
	}

	for _, tt := range tests {
		if got := Codes(tt.name); got != tt.want {
			t.Fatalf("Codes(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFallbackCodes(t *testing.T) {
	tests := []struct {
		first, last string
		want        [2]string
	}{
		{"Maria", "Rossi", [2]string{"ARC-MROSSI-1", "ARC-MROSSI-2"}},
		{"  Élodie", "Durand", [2]string{"ARC-EDURAND-1", "ARC-EDURAND-2"}},
		{"", "Rossi", [2]string{"ARC-ROSSI-1", "ARC-ROSSI-2"}},
	}

	for _, tt := range tests {
		if got := FallbackCodes(tt.first, tt.last); got != tt.want {
			t.Fatalf("FallbackCodes(%q, %q) = %v, want %v", tt.first, tt.last, got, tt.want)
		}
	}
}
