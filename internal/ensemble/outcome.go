package ensemble

import "fmt"

// Outcome is the binary prediction target.
type Outcome string

const (
	PetitionerWins Outcome = "petitioner_wins"
	RespondentWins Outcome = "respondent_wins"
)

func (o Outcome) Valid() bool {
	return o == PetitionerWins || o == RespondentWins
}

func (o Outcome) String() string { return string(o) }

// Phrase renders the outcome for the reasoning paragraph.
func (o Outcome) Phrase() string {
	if o == PetitionerWins {
		return "a favorable outcome for you (petitioner wins)"
	}
	return "an unfavorable outcome (respondent wins)"
}

func (o *Outcome) UnmarshalText(text []byte) error {
	v := Outcome(text)
	if !v.Valid() {
		return fmt.Errorf("unknown outcome %q", string(text))
	}
	*o = v
	return nil
}
