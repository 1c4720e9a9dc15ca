package glide

import (
	"fmt"
	"strings"
)

// ResponseKind identifies a classified server response variant.
type ResponseKind int

const (
	// ResponseUnknownCommand covers both the server's explicit
	// unknown-command reply and any frame whose tag the client cannot
	// interpret. The contract is degrade to unknown, never reject the
	// connection.
	ResponseUnknownCommand ResponseKind = iota

	ResponseUsernameOk
	ResponseUsernameTaken
	ResponseUsernameInvalid
	ResponseGlideRequestSent
	ResponseOkSuccess
	ResponseConnectedUsers
	ResponseIncomingRequests

	// ResponseFailure is a free-form failure reason from the server.
	ResponseFailure
)

// IncomingRequest is one pending glide offer awaiting ok/no.
type IncomingRequest struct {
	From     string
	Filename string
}

// ServerResponse is one classified response frame. Users is set for
// ResponseConnectedUsers, Requests for ResponseIncomingRequests, Message
// for ResponseFailure.
type ServerResponse struct {
	Kind     ResponseKind
	Users    []string
	Requests []IncomingRequest
	Message  string
}

// ClassifyResponse decodes one received frame. The first token selects
// the variant; the remaining payload is parsed per tag. Unrecognized tags
// classify as ResponseUnknownCommand and never fail.
func ClassifyResponse(p []byte) ServerResponse {
	text := strings.TrimSpace(string(p))

	tag, payload, _ := strings.Cut(text, " ")
	switch tag {
	case TagUsernameOk:
		return ServerResponse{Kind: ResponseUsernameOk}
	case TagUsernameTaken:
		return ServerResponse{Kind: ResponseUsernameTaken}
	case TagUsernameInvalid:
		return ServerResponse{Kind: ResponseUsernameInvalid}
	case TagGlideRequestSent:
		return ServerResponse{Kind: ResponseGlideRequestSent}
	case TagOkSuccess:
		return ServerResponse{Kind: ResponseOkSuccess}
	case TagUnknownCommand:
		return ServerResponse{Kind: ResponseUnknownCommand}
	case TagConnectedUsers:
		return ServerResponse{
			Kind:  ResponseConnectedUsers,
			Users: splitList(payload),
		}
	case TagIncomingRequests:
		return ServerResponse{
			Kind:     ResponseIncomingRequests,
			Requests: parseRequests(payload),
		}
	case TagError:
		return ServerResponse{Kind: ResponseFailure, Message: payload}
	default:
		return ServerResponse{Kind: ResponseUnknownCommand}
	}
}

// splitList splits a comma or line separated name list, dropping empty
// entries.
func splitList(payload string) []string {
	fields := strings.FieldsFunc(payload, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var names []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}

// parseRequests splits a list of sender:filename pairs. Entries missing
// the separator are skipped rather than failing the frame.
func parseRequests(payload string) []IncomingRequest {
	var reqs []IncomingRequest
	for _, entry := range splitList(payload) {
		from, filename, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		reqs = append(reqs, IncomingRequest{
			From:     strings.TrimSpace(from),
			Filename: strings.TrimSpace(filename),
		})
	}
	return reqs
}

// Encode renders the response in its wire form. Classify(Encode(r)) == r
// for every well-formed value; tests use this to script a peer.
func (r ServerResponse) Encode() []byte {
	switch r.Kind {
	case ResponseUsernameOk:
		return []byte(TagUsernameOk)
	case ResponseUsernameTaken:
		return []byte(TagUsernameTaken)
	case ResponseUsernameInvalid:
		return []byte(TagUsernameInvalid)
	case ResponseGlideRequestSent:
		return []byte(TagGlideRequestSent)
	case ResponseOkSuccess:
		return []byte(TagOkSuccess)
	case ResponseConnectedUsers:
		return []byte(TagConnectedUsers + " " + strings.Join(r.Users, ","))
	case ResponseIncomingRequests:
		entries := make([]string, 0, len(r.Requests))
		for _, req := range r.Requests {
			entries = append(entries, req.From+":"+req.Filename)
		}
		return []byte(TagIncomingRequests + " " + strings.Join(entries, ","))
	case ResponseFailure:
		return []byte(TagError + " " + r.Message)
	default:
		return []byte(TagUnknownCommand)
	}
}

// String yields the operator-facing description of the response.
func (r ServerResponse) String() string {
	switch r.Kind {
	case ResponseUsernameOk:
		return "username accepted"
	case ResponseUsernameTaken:
		return "username is already taken"
	case ResponseUsernameInvalid:
		return "username was rejected by the server"
	case ResponseGlideRequestSent:
		return "glide request sent"
	case ResponseOkSuccess:
		return "request accepted"
	case ResponseConnectedUsers:
		return fmt.Sprintf("%d connected user(s)", len(r.Users))
	case ResponseIncomingRequests:
		return fmt.Sprintf("%d incoming request(s)", len(r.Requests))
	case ResponseFailure:
		return r.Message
	default:
		return "unknown command"
	}
}
