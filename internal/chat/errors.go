package chat

import "errors"

// Authorization and validation failures returned by the facade. These are
// terminal rejections, never retried.
var (
	ErrNotRoomMember      = errors.New("user is not a room member")
	ErrNotMessageSender   = errors.New("only the sender may delete a message")
	ErrContentRequired    = errors.New("content is required for text messages")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrSelfRoom           = errors.New("cannot open a room with yourself")
)
