package glide

import "time"

// Callbacks provides hooks between the session engine and the interactive
// surface around it. All callbacks are optional - nil callbacks use
// default behavior.
type Callbacks struct {
	// OnUsernamePrompt is called to obtain one username candidate from
	// the operator during the handshake. An error aborts the handshake.
	OnUsernamePrompt func() (string, error)

	// OnCommandPrompt is called to obtain one command line from the
	// operator. An error ends the session loop.
	OnCommandPrompt func() (string, error)

	// OnNotice is called with human-readable status text: handshake
	// outcomes, command results, failure reasons. Nothing is reported
	// silently anywhere else.
	OnNotice func(message string)

	// OnProgress is called once per progress unit during a transfer.
	// Uploads count chunks (done, total chunk counts); downloads count
	// bytes (received, declared size). rate is units per second.
	OnProgress func(filename string, done, total int64, rate float64)

	// OnTransferStart is called when a file transfer starts.
	OnTransferStart func(filename string, size int64)

	// OnTransferComplete is called when a file transfer completes.
	OnTransferComplete func(filename string, transferred int64, duration time.Duration)
}

// defaultCallbacks returns a set of callbacks with default implementations.
func defaultCallbacks() *Callbacks {
	return &Callbacks{
		OnUsernamePrompt: func() (string, error) {
			return "", NewError(ErrValidationRejected, "no username prompt configured")
		},
		OnCommandPrompt: func() (string, error) {
			return "", NewError(ErrValidationRejected, "no command prompt configured")
		},
		OnNotice:           func(string) {},
		OnProgress:         func(string, int64, int64, float64) {},
		OnTransferStart:    func(string, int64) {},
		OnTransferComplete: func(string, int64, time.Duration) {},
	}
}

// mergeCallbacks merges user callbacks with defaults.
// User callbacks override defaults, nil callbacks use defaults.
func mergeCallbacks(user *Callbacks) *Callbacks {
	if user == nil {
		return defaultCallbacks()
	}

	def := defaultCallbacks()
	result := &Callbacks{}

	if user.OnUsernamePrompt != nil {
		result.OnUsernamePrompt = user.OnUsernamePrompt
	} else {
		result.OnUsernamePrompt = def.OnUsernamePrompt
	}

	if user.OnCommandPrompt != nil {
		result.OnCommandPrompt = user.OnCommandPrompt
	} else {
		result.OnCommandPrompt = def.OnCommandPrompt
	}

	if user.OnNotice != nil {
		result.OnNotice = user.OnNotice
	} else {
		result.OnNotice = def.OnNotice
	}

	if user.OnProgress != nil {
		result.OnProgress = user.OnProgress
	} else {
		result.OnProgress = def.OnProgress
	}

	if user.OnTransferStart != nil {
		result.OnTransferStart = user.OnTransferStart
	} else {
		result.OnTransferStart = def.OnTransferStart
	}

	if user.OnTransferComplete != nil {
		result.OnTransferComplete = user.OnTransferComplete
	} else {
		result.OnTransferComplete = def.OnTransferComplete
	}

	return result
}
