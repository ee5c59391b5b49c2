package experiment

// Button labels per phase.
const (
	ButtonStart      = "Press to Start"
	ButtonUnderstood = "Understood"
	ButtonRespond    = "Button"
)

// View is everything a Display shows for one state.
type View struct {
	Text          string
	ButtonText    string
	ButtonEnabled bool
	Stimulus      Stimulus
}

// Render derives the view from the state alone.
func Render(s *State) View {
	v := View{
		ButtonEnabled: s.ButtonEnabled(),
		Stimulus:      s.Stimulus(),
	}
	switch s.Phase() {
	case PhaseUnstarted:
		v.ButtonText = ButtonStart
	case PhaseInstructions:
		v.Text = InitMessage
		v.ButtonText = ButtonUnderstood
	case PhasePromptTrial, PhaseColorTrial:
		v.Text = s.PromptPosition() + s.PromptText()
		v.ButtonText = ButtonRespond
	case PhaseFinished:
		v.Text = EndMessage
	}
	return v
}
