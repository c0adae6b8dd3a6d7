package pubsub

import "fmt"

// Channel naming: {prefix}:platform:{platform}:{direction}.
const (
	// Adapters -> songqueue: normalized chat messages.
	ChannelChatInbound = "chat:platform:%s:inbound"

	// songqueue -> adapters: replies and announcements to post in chat.
	ChannelChatOutbound = "chat:platform:%s:outbound"

	// songqueue -> speech backend.
	ChannelSpeechRequests = "speech:platform:%s:requests"
)

// Subscribe patterns.
const (
	PatternChatInbound = "chat:platform:*:inbound"
)

// Topics backing the channels when the kafka driver is used.
const (
	TopicChatInbound    = "chat-inbound"
	TopicChatOutbound   = "chat-outbound"
	TopicSpeechRequests = "speech-requests"
)

// Event types.
const (
	EventChatMessage   = "chat_message"
	EventChatSay       = "chat_say"
	EventSpeechRequest = "speech_request"
)

// PlatformLocal addresses the speech backend running next to the overlay.
const PlatformLocal = "local"

// ChatInboundChannel returns the channel adapters publish chat messages on.
func ChatInboundChannel(platform string) string {
	return fmt.Sprintf(ChannelChatInbound, platform)
}

// ChatOutboundChannel returns the channel adapters read outgoing messages from.
func ChatOutboundChannel(platform string) string {
	return fmt.Sprintf(ChannelChatOutbound, platform)
}

// SpeechRequestChannel returns the channel the speech backend reads from.
func SpeechRequestChannel(platform string) string {
	return fmt.Sprintf(ChannelSpeechRequests, platform)
}

// ChatMessagePayload is a chat line as delivered by a platform adapter.
type ChatMessagePayload struct {
	Channel       string `json:"channel"`
	Message       string `json:"message"`
	DisplayName   string `json:"display_name"`
	IsMod         bool   `json:"is_mod"`
	IsBroadcaster bool   `json:"is_broadcaster"`
	Self          bool   `json:"self"`
}

// ChatSayPayload asks an adapter to post text into a channel.
type ChatSayPayload struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// SpeechRequestPayload asks the speech backend to read text aloud.
type SpeechRequestPayload struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}
