package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/weiawesome/wes-io-song-queue/internal/audit"
	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/queue"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// Chat command names.
const (
	CmdTTS    = "!tts"
	CmdSong   = "!song"
	CmdSkip   = "!skip"
	CmdPop    = "!pop"
	CmdRemove = "!remove"
	CmdClear  = "!clear"
	CmdQueue  = "!queue"
)

const defaultSpeaker = "Viewer"

// invocation is one parsed chat command.
type invocation struct {
	event domain.ChatEvent
	name  string
	args  []string
}

func (inv invocation) reply(text string) {
	if inv.event.Reply != nil {
		inv.event.Reply(text)
	}
}

type handlerFunc func(ctx context.Context, inv invocation) error

type entry struct {
	toggleKey  string
	privileged bool
	run        handlerFunc
}

// Router dispatches chat commands from any platform onto the queue, the
// speech backend and the announcer. It holds no state of its own.
type Router struct {
	queue     QueueStore
	speaker   Speaker
	announcer Announcer
	toggles   ToggleReader
	table     map[string]entry
}

// NewRouter creates a router.
func NewRouter(q QueueStore, speaker Speaker, announcer Announcer, toggles ToggleReader) *Router {
	r := &Router{
		queue:     q,
		speaker:   speaker,
		announcer: announcer,
		toggles:   toggles,
	}
	r.table = map[string]entry{
		CmdTTS:    {toggleKey: domain.ToggleTTS, run: r.handleTTS},
		CmdSong:   {toggleKey: domain.ToggleSong, run: r.handleSong},
		CmdSkip:   {toggleKey: domain.ToggleSkip, privileged: true, run: r.handleSkip},
		CmdPop:    {toggleKey: domain.ToggleSkip, privileged: true, run: r.handleSkip},
		CmdRemove: {toggleKey: domain.ToggleRemove, privileged: true, run: r.handleRemove},
		CmdClear:  {toggleKey: domain.ToggleClear, privileged: true, run: r.handleClear},
		CmdQueue:  {toggleKey: domain.ToggleQueue, run: r.handleQueue},
	}
	return r
}

// Dispatch runs the command in evt, if any. Unknown commands, missing
// arguments, denied privileges and disabled toggles are silent no-ops.
// The only error returned is an announce failure from !queue.
func (r *Router) Dispatch(ctx context.Context, evt domain.ChatEvent) error {
	if evt.Self {
		return nil
	}
	text := strings.TrimSpace(evt.Message)
	if text == "" {
		return nil
	}

	fields := strings.Fields(text)
	e, ok := r.table[fields[0]]
	if !ok {
		return nil
	}
	if e.privileged && !evt.Privileged() {
		return nil
	}
	if !r.enabled(e.toggleKey) {
		return nil
	}

	ctx = log.WithFields(ctx, map[string]string{
		log.FieldPlatform: evt.Platform,
		log.FieldChannel:  evt.Channel,
		log.FieldCommand:  fields[0],
	})
	return e.run(ctx, invocation{event: evt, name: fields[0], args: fields[1:]})
}

// enabled treats a toggle the reader does not know as enabled.
func (r *Router) enabled(key string) bool {
	if r.toggles == nil {
		return true
	}
	enabled, known := r.toggles.Toggle(key)
	return !known || enabled
}

func (r *Router) handleTTS(ctx context.Context, inv invocation) error {
	if len(inv.args) == 0 {
		return nil
	}
	name := inv.event.DisplayName
	if name == "" {
		name = defaultSpeaker
	}
	r.speaker.Speak(ctx, fmt.Sprintf("%s says %s", name, strings.Join(inv.args, " ")))
	return nil
}

func (r *Router) handleSong(ctx context.Context, inv invocation) error {
	if len(inv.args) == 0 {
		return nil
	}
	item, ok := r.queue.AddSong(strings.Join(inv.args, " "), inv.event.DisplayName)
	if !ok {
		return nil
	}
	inv.reply(fmt.Sprintf("Queued: %s (#%d)", item.Title, r.queue.Size()))
	return nil
}

func (r *Router) handleSkip(ctx context.Context, inv invocation) error {
	item, ok := r.queue.SkipSong()
	if !ok {
		return nil
	}
	audit.LogWithDetail(ctx, audit.ActionQueueSkip, audit.SourceChat, inv.event.DisplayName, item.Title, "song skipped from chat")
	inv.reply(fmt.Sprintf("Skipped. %d left.", r.queue.Size()))
	return nil
}

func (r *Router) handleRemove(ctx context.Context, inv invocation) error {
	if len(inv.args) == 0 {
		return nil
	}
	position, ok := queue.ParsePosition(inv.args[0])
	if !ok {
		return nil
	}
	item, ok := r.queue.RemoveSong(position)
	if !ok {
		return nil
	}
	audit.LogWithDetail(ctx, audit.ActionQueueRemove, audit.SourceChat, inv.event.DisplayName, item.Title, "song removed from chat")
	inv.reply(fmt.Sprintf("Removed: %s", item.Title))
	return nil
}

func (r *Router) handleClear(ctx context.Context, inv invocation) error {
	if !r.queue.ClearQueue() {
		return nil
	}
	audit.Log(ctx, audit.ActionQueueClear, audit.SourceChat, inv.event.DisplayName, "queue cleared from chat")
	inv.reply("Queue cleared.")
	return nil
}

// handleQueue announces on twitch and replies directly everywhere else.
func (r *Router) handleQueue(ctx context.Context, inv invocation) error {
	if inv.event.Platform == domain.PlatformTwitch {
		if _, err := r.announcer.Announce(ctx, inv.event.Channel); err != nil {
			return fmt.Errorf("announce queue: %w", err)
		}
		return nil
	}
	inv.reply("Next: " + queue.Summarize(r.queue.Head(queue.SummaryLimit)))
	return nil
}
