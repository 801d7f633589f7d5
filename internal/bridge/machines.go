package bridge

import (
	"github.com/looplab/fsm"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// Car-Load events.
const (
	evCarLoadRequested = "load_requested"
	evCarLoadConfirmed = "load_confirmed"
)

// Playback states and events.
const (
	playStopped = "Stopped"
	playPlaying = "Playing"
	evPlay      = "play"
	evStop      = "stop"
)

// newCarLoadFSM builds NotLoaded -> Loading -> Loaded. Resets back to
// NotLoaded are unconditional (car change, session replacement) and go
// through SetState, bypassing transition rules on purpose.
func newCarLoadFSM() *fsm.FSM {
	return fsm.NewFSM(string(domain.CarNotLoaded), fsm.Events{
		{Name: evCarLoadRequested, Src: []string{string(domain.CarNotLoaded)}, Dst: string(domain.CarLoading)},
		{Name: evCarLoadConfirmed, Src: []string{string(domain.CarLoading)}, Dst: string(domain.CarLoaded)},
	}, nil)
}

// newPlaybackFSM builds Stopped <-> Playing. Transitions fire on engine
// acknowledgments, not optimistically; SequenceFinished and transport loss
// force Stopped via SetState.
func newPlaybackFSM() *fsm.FSM {
	return fsm.NewFSM(playStopped, fsm.Events{
		{Name: evPlay, Src: []string{playStopped}, Dst: playPlaying},
		{Name: evStop, Src: []string{playPlaying}, Dst: playStopped},
	}, nil)
}
