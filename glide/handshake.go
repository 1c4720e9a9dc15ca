package glide

import "regexp"

// HandshakeState is one state of the username negotiation machine.
type HandshakeState int

const (
	// StatePrompting awaits a username candidate from the operator.
	StatePrompting HandshakeState = iota

	// StateSent has transmitted a candidate and awaits the verdict.
	StateSent

	// StateAccepted is terminal: the session owns an accepted username.
	StateAccepted

	// StateRejected reports the server's reason, then re-prompts.
	StateRejected
)

// usernamePattern covers charset, length, and edge rules. Consecutive
// periods slip through the character class, so they get a separate check.
var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9.]{0,8}[a-zA-Z0-9])?$`)
	doublePeriodCheck = regexp.MustCompile(`\.\.`)
)

// UsernameRules is the full rule set shown to the operator when a
// candidate fails local validation.
const UsernameRules = `Invalid username!
Usernames must follow these rules:
    - Only alphanumeric characters and periods (.) are allowed.
    - Must be 1 to 10 characters long.
    - Cannot start or end with a period (.).
    - Cannot contain consecutive periods (..).

Please try again with a valid username.`

// ValidateUsername reports whether name satisfies the username rules:
// 1-10 characters, alphanumeric plus periods, no leading or trailing
// period, no consecutive periods.
func ValidateUsername(name string) bool {
	return usernamePattern.MatchString(name) && !doublePeriodCheck.MatchString(name)
}

// Handshake drives username negotiation to a terminal state and returns
// the accepted username. Locally invalid candidates re-prompt with the
// full rule set; server rejections re-prompt with the specific reason;
// there is no retry bound. A peer close at any point is fatal, since no
// retry target exists before the session is established.
func (s *Session) Handshake() (string, error) {
	for {
		// Prompting
		name, err := s.callbacks.OnUsernamePrompt()
		if err != nil {
			return "", err
		}

		if !ValidateUsername(name) {
			s.callbacks.OnNotice(UsernameRules)
			continue
		}

		// Sent
		s.logger.Debug("handshake: sending username %q", name)
		if err := s.conn.WriteString(name); err != nil {
			return "", err
		}

		frame, err := s.conn.ReadFrame()
		if err != nil {
			return "", err
		}

		response := ClassifyResponse(frame)
		switch response.Kind {
		case ResponseUsernameOk:
			// Accepted
			s.username = name
			s.logger.Info("handshake: accepted as @%s", name)
			s.callbacks.OnNotice("You are now connected as @" + name)
			return name, nil
		case ResponseUsernameTaken, ResponseUsernameInvalid:
			// Rejected, back to Prompting
			s.logger.Info("handshake: server rejected %q: %s", name, response)
			s.callbacks.OnNotice("Server rejected username: " + response.String())
		default:
			s.callbacks.OnNotice("Server rejected username: " + response.String())
		}
	}
}
