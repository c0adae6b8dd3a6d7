package domain

// Platforms with dedicated behaviour.
const (
	PlatformTwitch  = "twitch"
	PlatformYouTube = "youtube"
)

// ChatEvent is a chat line normalised by a platform adapter.
type ChatEvent struct {
	Platform      string
	Channel       string
	Message       string
	DisplayName   string
	IsMod         bool
	IsBroadcaster bool
	// Self is set when the line was sent by our own bot account.
	Self bool
	// Reply posts text back to the originating platform and channel.
	Reply func(text string)
}

// Privileged reports whether the sender may run moderator commands.
func (e ChatEvent) Privileged() bool {
	return e.IsMod || e.IsBroadcaster
}
