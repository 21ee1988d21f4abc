package domain

import "fmt"

// ChangeIndicator is the category of a TAF change group.
type ChangeIndicator int

const (
	ChangeRejected ChangeIndicator = iota
	ChangeTemporaryFluctuations
	ChangeBecoming
	ChangeFrom
	ChangeProbability30
	ChangeProbability40
	ChangeProbability30Tempo
	ChangeProbability40Tempo
)

// ClassifyChangeType maps a change-type keyword to its indicator. Keywords
// not legal in a TAF (AT, UNTIL, anything else) yield ChangeRejected.
func ClassifyChangeType(keyword string) ChangeIndicator {
	switch keyword {
	case "TEMPO":
		return ChangeTemporaryFluctuations
	case "BECMG":
		return ChangeBecoming
	case "FM":
		return ChangeFrom
	case "PROB30":
		return ChangeProbability30
	case "PROB40":
		return ChangeProbability40
	case "PROB30 TEMPO":
		return ChangeProbability30Tempo
	case "PROB40 TEMPO":
		return ChangeProbability40Tempo
	default:
		return ChangeRejected
	}
}

// MutatesBaseline reports whether groups of this kind carry their values
// forward into the baseline for later groups.
func (c ChangeIndicator) MutatesBaseline() bool {
	switch c {
	case ChangeBecoming, ChangeFrom:
		return true
	case ChangeRejected, ChangeTemporaryFluctuations, ChangeProbability30,
		ChangeProbability40, ChangeProbability30Tempo, ChangeProbability40Tempo:
		return false
	default:
		return false
	}
}

func (c ChangeIndicator) String() string {
	switch c {
	case ChangeRejected:
		return "REJECTED"
	case ChangeTemporaryFluctuations:
		return "TEMPORARY_FLUCTUATIONS"
	case ChangeBecoming:
		return "BECOMING"
	case ChangeFrom:
		return "FROM"
	case ChangeProbability30:
		return "PROBABILITY_30"
	case ChangeProbability40:
		return "PROBABILITY_40"
	case ChangeProbability30Tempo:
		return "PROBABILITY_30_TEMPORARY_FLUCTUATIONS"
	case ChangeProbability40Tempo:
		return "PROBABILITY_40_TEMPORARY_FLUCTUATIONS"
	default:
		return fmt.Sprintf("ChangeIndicator(%d)", int(c))
	}
}

func (c ChangeIndicator) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChangeIndicator) UnmarshalText(b []byte) error {
	for i := ChangeRejected; i <= ChangeProbability40Tempo; i++ {
		if i.String() == string(b) {
			*c = i
			return nil
		}
	}
	return fmt.Errorf("unknown change indicator %q", b)
}
