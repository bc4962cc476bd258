package domain

import (
	"errors"
	"sort"
)

// Decoder errors
var (
	ErrEmptyErrorCode = errors.New("error code must not be empty")
)

// GroupStateDecoder translates an opaque equipment status code into a
// LocationGroupState. Decode returns false when the decoder has no opinion
// about the code, allowing the chain to fall through.
type GroupStateDecoder interface {
	// Precedence orders decoders within a chain; lower runs first
	Precedence() int

	// Decode inspects the code and returns a definite state, or false
	Decode(code string) (LocationGroupState, bool)
}

// DecoderChain is an ordered sequence of decoders tried in ascending
// precedence. The first definite answer wins.
type DecoderChain struct {
	decoders []GroupStateDecoder
}

// NewDecoderChain builds a chain from the given decoders, sorted by precedence
func NewDecoderChain(decoders ...GroupStateDecoder) *DecoderChain {
	sorted := make([]GroupStateDecoder, len(decoders))
	copy(sorted, decoders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Precedence() < sorted[j].Precedence()
	})
	return &DecoderChain{decoders: sorted}
}

// Decode runs the chain against the code. An empty code is a contract
// violation and fails fast. When every decoder abstains the second return
// is false: the code is unclassifiable and no state change should be applied.
func (c *DecoderChain) Decode(code string) (LocationGroupState, bool, error) {
	if code == "" {
		return "", false, ErrEmptyErrorCode
	}

	for _, decoder := range c.decoders {
		if state, ok := decoder.Decode(code); ok {
			return state, true, nil
		}
	}

	return "", false, nil
}

// Size returns the number of decoders in the chain
func (c *DecoderChain) Size() int {
	return len(c.decoders)
}

// decodeDigitFlag interprets a single flag character: non-digits are
// suppression markers (no opinion), '0' means available, any other digit
// means not available.
func decodeDigitFlag(flag byte) (LocationGroupState, bool) {
	if flag < '0' || flag > '9' {
		return "", false
	}
	if flag == '0' {
		return GroupStateAvailable, true
	}
	return GroupStateNotAvailable, true
}

// OutfeedStateDecoder is the baseline decoder for the outfeed availability
// flag, carried two characters before the end of the code.
type OutfeedStateDecoder struct{}

// Precedence returns the baseline precedence
func (OutfeedStateDecoder) Precedence() int { return 5 }

// Decode reads the outfeed flag position
func (OutfeedStateDecoder) Decode(code string) (LocationGroupState, bool) {
	if len(code) < 2 {
		return "", false
	}
	return decodeDigitFlag(code[len(code)-2])
}

// InfeedStateDecoder decodes the infeed availability flag, carried by the
// last character of the code.
type InfeedStateDecoder struct{}

// Precedence returns the baseline precedence
func (InfeedStateDecoder) Precedence() int { return 5 }

// Decode reads the infeed flag position
func (InfeedStateDecoder) Decode(code string) (LocationGroupState, bool) {
	if len(code) < 1 {
		return "", false
	}
	return decodeDigitFlag(code[len(code)-1])
}
