// Package classifier maps feature vectors, and optionally an auxiliary
// image classifier's angry probability, to one of four emotion labels.
package classifier

import "fmt"

type Label uint8

const (
	Neutral Label = iota
	Happy
	Angry
	Tired
)

var names = [...]string{
	Neutral: "neutral",
	Happy:   "happy",
	Angry:   "angry",
	Tired:   "tired",
}

// Labels lists every label in display order.
func Labels() []Label { return []Label{Happy, Angry, Tired, Neutral} }

func (l Label) String() string {
	if int(l) < len(names) {
		return names[l]
	}
	return fmt.Sprintf("label(%d)", uint8(l))
}

func (l Label) Valid() bool { return int(l) < len(names) }

func ParseLabel(s string) (Label, error) {
	for i, n := range names {
		if n == s {
			return Label(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown emotion label %q", s)
}

func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid emotion label %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(b []byte) error {
	v, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
