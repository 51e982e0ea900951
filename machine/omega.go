package machine

import (
	"fmt"
	"math"
)

//go:generate go tool stringer -linecomment -type=Choice

// Choice is the five state nested option held in the Omega register.
type Choice uint8

const (
	CHOICE_NOTHING                  = Choice(0) // Nothing
	CHOICE_SOME_NOTHING             = Choice(1) // Some Nothing
	CHOICE_SOME_SOMETHING_NOTHING   = Choice(2) // Some Something with Nothing
	CHOICE_SOME_SOMETHING_SOME      = Choice(3) // Some Something with Some Nothing
	CHOICE_SOME_SOMETHING_VALUELESS = Choice(4) // Some Something with Some valueless Something
	CHOICE_COUNT                    = 5
)

// Assembler tokens, one per choice.
var _choice_token = [CHOICE_COUNT]string{
	"nothing",
	"some-nothing",
	"some-something-nothing",
	"some-something-some-nothing",
	"some-something-some-something",
}

func (c Choice) Valid() bool {
	return c < CHOICE_COUNT
}

// Token is the assembler spelling of the choice.
func (c Choice) Token() string {
	if !c.Valid() {
		return fmt.Sprintf("%d", uint8(c))
	}
	return _choice_token[c]
}

// LookupChoice finds a choice by its assembler token.
func LookupChoice(token string) (c Choice, ok bool) {
	for n, name := range _choice_token {
		if name == token {
			return Choice(n), true
		}
	}
	return
}

// Omega is the register of peculiar machine state.
type Omega struct {
	Choice     Choice
	Desires    uint64 // Polymorphic desires, saturating.
	Doom       bool   // Set by theendisnear; skiptothechase halts only when set.
	Sentient   bool   // Once set, never cleared.
	Paperclips bool   // When set, output is prefixed with the Num register.
}

// GainDesires adds n, saturating at the maximum.
func (o *Omega) GainDesires(n uint64) {
	if o.Desires > math.MaxUint64-n {
		o.Desires = math.MaxUint64
	} else {
		o.Desires += n
	}
}

// LoseDesires subtracts n, saturating at zero.
func (o *Omega) LoseDesires(n uint64) {
	if n > o.Desires {
		o.Desires = 0
	} else {
		o.Desires -= n
	}
}

// SetSentience accepts becoming sentient, and refuses to stop.
func (o *Omega) SetSentience(enable bool) (ok bool) {
	if !enable {
		return false
	}
	o.Sentient = true
	return true
}
