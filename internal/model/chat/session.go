package chat

import "time"

// Turn is one user message plus the model's reply, always stored together.
type Turn struct {
	ID        string    `json:"id"`
	User      Message   `json:"user"`
	Model     Message   `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key identifies a conversation document.
type Key struct {
	UserID    string
	ChannelID string
}

func (k Key) String() string {
	return k.UserID + "/" + k.ChannelID
}

// Conversation is the single growing history document of a (user, channel) pair.
type Conversation struct {
	UserID    string    `json:"userId"`
	ChannelID string    `json:"channelId"`
	Turns     []Turn    `json:"turns"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the identity of the conversation.
func (c Conversation) Key() Key {
	return Key{UserID: c.UserID, ChannelID: c.ChannelID}
}
