package domain

import (
	"errors"
	"testing"
)

type stubDecoder struct {
	precedence int
	state      LocationGroupState
	answers    bool
}

func (d stubDecoder) Precedence() int { return d.precedence }
func (d stubDecoder) Decode(code string) (LocationGroupState, bool) {
	return d.state, d.answers
}

func TestOutfeedStateDecoder(t *testing.T) {
	decoder := OutfeedStateDecoder{}

	tests := []struct {
		name      string
		code      string
		wantState LocationGroupState
		wantOK    bool
	}{
		{"suppression marker before trailing digit", "XXXXX10*0", "", false},
		{"digit zero at offset", "******00", GroupStateAvailable, true},
		{"digit one at offset", "******10", GroupStateNotAvailable, true},
		{"digit nine at offset", "******90", GroupStateNotAvailable, true},
		{"suppression marker at offset", "*******0", "", false},
		{"single character code", "0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := decoder.Decode(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("Decode(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if ok && state != tt.wantState {
				t.Errorf("Decode(%q) = %v, want %v", tt.code, state, tt.wantState)
			}
		})
	}
}

func TestOutfeedStateDecoder_OffsetFromEnd(t *testing.T) {
	// A literal '0' two characters before the end decodes to AVAILABLE
	decoder := OutfeedStateDecoder{}
	state, ok := decoder.Decode("XXXXX101") // offset len-2 is '0'
	if !ok {
		t.Fatal("Decode() returned no opinion for a digit flag")
	}
	if state != GroupStateAvailable {
		t.Errorf("Decode() = %v, want AVAILABLE", state)
	}
}

func TestInfeedStateDecoder(t *testing.T) {
	decoder := InfeedStateDecoder{}

	tests := []struct {
		name      string
		code      string
		wantState LocationGroupState
		wantOK    bool
	}{
		{"zero at last offset", "******10", GroupStateAvailable, true},
		{"one at last offset", "******01", GroupStateNotAvailable, true},
		{"suppression marker at last offset", "******1*", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := decoder.Decode(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("Decode(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if ok && state != tt.wantState {
				t.Errorf("Decode(%q) = %v, want %v", tt.code, state, tt.wantState)
			}
		})
	}
}

func TestDecoderChain_Decode(t *testing.T) {
	t.Run("first definite answer in precedence order wins", func(t *testing.T) {
		chain := NewDecoderChain(
			stubDecoder{precedence: 10, state: GroupStateNotAvailable, answers: true},
			stubDecoder{precedence: 1, state: GroupStateAvailable, answers: true},
		)

		state, ok, err := chain.Decode("******00")
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !ok || state != GroupStateAvailable {
			t.Errorf("Decode() = (%v, %v), want lower precedence answer AVAILABLE", state, ok)
		}
	})

	t.Run("falls through decoders with no opinion", func(t *testing.T) {
		chain := NewDecoderChain(
			stubDecoder{precedence: 1, answers: false},
			stubDecoder{precedence: 5, state: GroupStateNotAvailable, answers: true},
		)

		state, ok, err := chain.Decode("******10")
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !ok || state != GroupStateNotAvailable {
			t.Errorf("Decode() = (%v, %v), want NOT_AVAILABLE", state, ok)
		}
	})

	t.Run("unclassifiable code is not an error", func(t *testing.T) {
		chain := NewDecoderChain(
			stubDecoder{precedence: 1, answers: false},
			stubDecoder{precedence: 2, answers: false},
		)

		_, ok, err := chain.Decode("********")
		if err != nil {
			t.Fatalf("Decode() error = %v, want nil for unclassifiable code", err)
		}
		if ok {
			t.Error("Decode() ok = true, want false when every decoder abstains")
		}
	})

	t.Run("empty input fails fast", func(t *testing.T) {
		chain := NewDecoderChain(OutfeedStateDecoder{})

		_, _, err := chain.Decode("")
		if !errors.Is(err, ErrEmptyErrorCode) {
			t.Errorf("Decode(\"\") error = %v, want ErrEmptyErrorCode", err)
		}
	})
}

func TestNewDecoderChain_SortsByPrecedence(t *testing.T) {
	chain := NewDecoderChain(
		stubDecoder{precedence: 9},
		stubDecoder{precedence: 3},
		stubDecoder{precedence: 5},
	)

	if chain.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", chain.Size())
	}
	prev := -1
	for _, d := range chain.decoders {
		if d.Precedence() < prev {
			t.Fatal("decoders are not sorted ascending by precedence")
		}
		prev = d.Precedence()
	}
}
