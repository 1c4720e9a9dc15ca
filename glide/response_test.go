package glide

import (
	"reflect"
	"testing"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ServerResponse
	}{
		{"username ok", "USERNAME_OK", ServerResponse{Kind: ResponseUsernameOk}},
		{"username taken", "USERNAME_TAKEN", ServerResponse{Kind: ResponseUsernameTaken}},
		{"username invalid", "USERNAME_INVALID", ServerResponse{Kind: ResponseUsernameInvalid}},
		{"glide request sent", "GLIDE_REQUEST_SENT", ServerResponse{Kind: ResponseGlideRequestSent}},
		{"ok success", "OK_SUCCESS", ServerResponse{Kind: ResponseOkSuccess}},
		{"unknown command", "UNKNOWN_COMMAND", ServerResponse{Kind: ResponseUnknownCommand}},
		{
			"connected users",
			"CONNECTED_USERS alice,bob,carol",
			ServerResponse{Kind: ResponseConnectedUsers, Users: []string{"alice", "bob", "carol"}},
		},
		{
			"connected users newline separated",
			"CONNECTED_USERS alice\nbob",
			ServerResponse{Kind: ResponseConnectedUsers, Users: []string{"alice", "bob"}},
		},
		{
			"connected users empty",
			"CONNECTED_USERS",
			ServerResponse{Kind: ResponseConnectedUsers},
		},
		{
			"incoming requests",
			"INCOMING_REQUESTS alice:notes.txt,bob:pic.png",
			ServerResponse{Kind: ResponseIncomingRequests, Requests: []IncomingRequest{
				{From: "alice", Filename: "notes.txt"},
				{From: "bob", Filename: "pic.png"},
			}},
		},
		{"failure", "ERROR you cannot do that", ServerResponse{Kind: ResponseFailure, Message: "you cannot do that"}},
		{"trailing whitespace", "USERNAME_OK\n", ServerResponse{Kind: ResponseUsernameOk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyResponse([]byte(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClassifyResponse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyResponseUnknownTagDegrades(t *testing.T) {
	// The peer may send free-form text the client cannot interpret. The
	// contract is degrade to unknown, never fail.
	inputs := []string{
		"SOMETHING_NEW",
		"hello there",
		"???",
		"",
		"\x00\x01\x02",
	}
	for _, in := range inputs {
		got := ClassifyResponse([]byte(in))
		if got.Kind != ResponseUnknownCommand {
			t.Errorf("ClassifyResponse(%q).Kind = %v, want ResponseUnknownCommand", in, got.Kind)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	responses := []ServerResponse{
		{Kind: ResponseUsernameOk},
		{Kind: ResponseUsernameTaken},
		{Kind: ResponseUsernameInvalid},
		{Kind: ResponseGlideRequestSent},
		{Kind: ResponseOkSuccess},
		{Kind: ResponseUnknownCommand},
		{Kind: ResponseConnectedUsers, Users: []string{"alice", "bob"}},
		{Kind: ResponseIncomingRequests, Requests: []IncomingRequest{
			{From: "alice", Filename: "notes.txt"},
		}},
		{Kind: ResponseFailure, Message: "nope"},
	}

	for _, r := range responses {
		got := ClassifyResponse(r.Encode())
		if !reflect.DeepEqual(got, r) {
			t.Errorf("round trip of %+v via %q yielded %+v", r, r.Encode(), got)
		}
	}
}

func TestResponseString(t *testing.T) {
	r := ServerResponse{Kind: ResponseConnectedUsers, Users: []string{"a", "b"}}
	if r.String() != "2 connected user(s)" {
		t.Errorf("String() = %q", r.String())
	}
	r = ServerResponse{Kind: ResponseFailure, Message: "file too large"}
	if r.String() != "file too large" {
		t.Errorf("String() = %q", r.String())
	}
}
