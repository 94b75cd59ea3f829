package chat

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start chat with yourself")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrMessageTooLong       = errors.New("message exceeds 2000 characters")
	ErrRoleRequired         = errors.New("choose a role before starting a conversation")
)
