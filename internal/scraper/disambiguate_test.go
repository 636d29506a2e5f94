package scraper

import "testing"

func TestParseOpenTotal(t *testing.T) {
	tests := []struct {
		text      string
		wantOpen  int
		wantTotal int
		wantNil   bool
	}{
		{text: "9/1476% Open", wantOpen: 9, wantTotal: 147},
		{text: "45/16516% Open", wantOpen: 45, wantTotal: 165},
		{text: "30/18816% Open", wantOpen: 30, wantTotal: 188},
		{text: "144/144100% Open", wantOpen: 144, wantTotal: 144},
		{text: "195/195100%Open", wantOpen: 195, wantTotal: 195},
		{text: "5/9-", wantOpen: 5, wantTotal: 9},
		{text: "25/35-", wantOpen: 25, wantTotal: 35},
		{text: "30/171", wantOpen: 30, wantTotal: 171},
		{text: "  12/40  ", wantOpen: 12, wantTotal: 40},
		// equal scores keep the earlier split in search order
		{text: "0/300% Open", wantOpen: 0, wantTotal: 3},
		{text: "", wantNil: true},
		{text: "-", wantNil: true},
		{text: "Open", wantNil: true},
		{text: "closed/12", wantNil: true},
		// only split is total 1 < open 50
		{text: "50/10% Open", wantNil: true},
		// too few digits to split
		{text: "1/9% Open", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			open, total := ParseOpenTotal(tt.text)

			if tt.wantNil {
				if open != nil || total != nil {
					t.Errorf("ParseOpenTotal(%q) = (%v, %v), want (nil, nil)", tt.text, deref(open), deref(total))
				}
				return
			}

			if open == nil || total == nil {
				t.Fatalf("ParseOpenTotal(%q) returned nil, want (%d, %d)", tt.text, tt.wantOpen, tt.wantTotal)
			}
			if *open != tt.wantOpen || *total != tt.wantTotal {
				t.Errorf("ParseOpenTotal(%q) = (%d, %d), want (%d, %d)", tt.text, *open, *total, tt.wantOpen, tt.wantTotal)
			}
		})
	}
}

func TestParseOpenTotal_OpenNeverExceedsTotal(t *testing.T) {
	inputs := []string{
		"9/1476% Open", "45/16516% Open", "144/144100% Open", "200/1500% Open",
		"7/7100% Open", "3/4575% Open", "120/1300% Open", "99/99100% Open",
	}

	for _, in := range inputs {
		open, total := ParseOpenTotal(in)
		if open == nil {
			continue
		}
		if *open > *total {
			t.Errorf("ParseOpenTotal(%q) = (%d, %d), open exceeds total", in, *open, *total)
		}
	}
}

func TestParseOpenTotal_PrefersRealisticTotals(t *testing.T) {
	// 12/1200 agrees exactly with 1% but the total is implausible
	open, total := ParseOpenTotal("12/12001% Open")
	if open == nil || total == nil {
		t.Fatal("ParseOpenTotal returned nil")
	}
	if *open != 12 || *total != 120 {
		t.Errorf("ParseOpenTotal = (%d, %d), want (12, 120)", *open, *total)
	}
}

func deref(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
