package ui

import "cutui/transcript"

// assistantContentMsg carries one incrementally rendered assistant
// utterance while the agent loop is still running.
type assistantContentMsg struct {
	Utterance *transcript.Utterance
}

// loopDoneMsg signals that the agent loop finished for the last user
// input.
type loopDoneMsg struct {
	Err error
}
