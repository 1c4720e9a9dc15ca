// Package glide implements the client side of the Glide file-sharing
// protocol.
//
// Glide is a line-oriented text protocol spoken over a single TCP
// connection. The client authenticates with a username, then runs a strict
// lockstep command loop: one command frame out, one classified response
// frame in. File payloads are streamed in fixed-size chunks after a
// metadata frame announcing the filename and byte count.
//
// The package is designed as a library that drives the protocol state
// machine and provides callback hooks for operator prompting, progress
// tracking, and status reporting. Terminal handling and process startup
// live in cmd/glide.
package glide

// DefaultChunkSize is the read/write unit for file payloads and the size
// of every bounded protocol read.
const DefaultChunkSize = 1024

// Response tags sent by the server. The first whitespace-delimited token
// of a response frame selects the variant; anything unrecognized degrades
// to ResponseUnknownCommand rather than failing the connection.
const (
	// TagUsernameOk acknowledges the handshake username.
	TagUsernameOk = "USERNAME_OK"

	// TagUsernameTaken rejects a username already in use.
	TagUsernameTaken = "USERNAME_TAKEN"

	// TagUsernameInvalid rejects a username the server refuses to accept.
	TagUsernameInvalid = "USERNAME_INVALID"

	// TagGlideRequestSent confirms a glide offer was relayed; the file
	// payload follows immediately.
	TagGlideRequestSent = "GLIDE_REQUEST_SENT"

	// TagOkSuccess confirms an accepted request; a metadata frame and the
	// file payload follow.
	TagOkSuccess = "OK_SUCCESS"

	// TagUnknownCommand reports that the server could not interpret the
	// last command frame.
	TagUnknownCommand = "UNKNOWN_COMMAND"

	// TagConnectedUsers prefixes the list payload for the list command.
	TagConnectedUsers = "CONNECTED_USERS"

	// TagIncomingRequests prefixes the pending-offer payload for the reqs
	// command.
	TagIncomingRequests = "INCOMING_REQUESTS"

	// TagError prefixes a free-form failure reason.
	TagError = "ERROR"
)

// MetadataSeparator splits the filename and size fields of a transfer
// metadata frame.
const MetadataSeparator = ":"

// ChunkCount returns the number of chunks needed to stream size bytes in
// units of at most chunkSize bytes.
func ChunkCount(size int64, chunkSize int) int64 {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	count := size / int64(chunkSize)
	if size%int64(chunkSize) > 0 {
		count++
	}
	return count
}
