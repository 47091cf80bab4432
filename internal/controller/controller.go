package controller

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helix-dev/helix/internal/api"
	"github.com/helix-dev/helix/internal/chat"
	"github.com/helix-dev/helix/internal/log"
	"github.com/helix-dev/helix/internal/reply"
)

// ErrLoginIncomplete is returned when login is attempted without a username
// or a selected campaign.
var ErrLoginIncomplete = errors.New("controller: username and campaign are required")

// errorReplyText is rendered as a system message when a chat turn fails.
const errorReplyText = "Failed to get response from API. Please try again."

// Transport is the real-time connection the controller exclusively owns.
// No other component may connect or disconnect it.
type Transport interface {
	Connect(ctx context.Context, username string) error
	Disconnect()
	JoinRoom(roomID string)
	LeaveRoom(roomID string)
	SendMessage(roomID, text string)
	OnMessageReceived(handler func(chat.Message))
	OnAPIResponseReceived(handler func(raw json.RawMessage))
	OnError(handler func(error))
}

// Backend is the request/response surface the controller needs.
type Backend interface {
	ListCampaigns(ctx context.Context, userID int64) ([]api.Campaign, error)
	CreateCampaign(ctx context.Context, req api.CreateCampaignRequest) (int64, error)
	SendChatTurn(ctx context.Context, req api.ChatTurnRequest) (reply.Reply, []reply.Diagnostic, error)
}

// Options configures a Controller.
type Options struct {
	UserID         int64
	ConversationID int64
	Rooms          []chat.Room
	DefaultRoomID  string
}

// Turn identifies one in-flight chat turn: the correlation id sent to the
// backend plus the room and campaign captured when the turn began. Late
// replies are validated against the captured scope, not controller state at
// completion time.
type Turn struct {
	CorrelationID string
	RoomID        string
	CampaignID    int64
	Text          string
}

// Controller mediates between the transport, the backend API, the payload
// normalizer, and the render layer. All failure paths end in a system
// message or a logged event; nothing escapes to the caller as a panic.
type Controller struct {
	transport Transport
	backend   Backend
	logger    *log.Logger // nil disables event logging
	opts      Options

	mu      sync.Mutex
	state   State
	ids     *chat.IDGenerator
	now     func() time.Time
	newCID  func() string
	handled map[string]bool // correlation ids already rendered
	pending map[string]Turn // correlation id -> captured scope
	updates chan State
}

// New creates a Controller and registers itself on the transport's inbound
// events. The returned controller starts in the LoggedOut state with the
// configured room list.
func New(t Transport, b Backend, logger *log.Logger, opts Options) *Controller {
	c := &Controller{
		transport: t,
		backend:   b,
		logger:    logger,
		opts:      opts,
		state:     State{Rooms: opts.Rooms},
		ids:       chat.NewIDGenerator(),
		now:       time.Now,
		newCID:    uuid.NewString,
		handled:   make(map[string]bool),
		pending:   make(map[string]Turn),
		updates:   make(chan State, 1),
	}

	t.OnMessageReceived(c.handleTransportMessage)
	t.OnAPIResponseReceived(c.handleAPIResponse)
	t.OnError(func(err error) {
		c.logEvent(log.LogEvent{Event: log.EventTransportError, Error: err.Error()})
	})
	return c
}

// Updates returns a channel carrying state snapshots after each change.
// Intermediate snapshots may be conflated; the latest state is always
// delivered.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// State returns the current state snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login validates credentials, connects the transport, and joins the
// default room. The only transition out of LoggedOut. A failed connect is
// not fatal: the session proceeds on the request/response channel alone,
// with a banner noting the degraded mode.
func (c *Controller) Login(ctx context.Context, username string, campaignID int64) error {
	username = strings.TrimSpace(username)
	if username == "" || campaignID == 0 {
		return ErrLoginIncomplete
	}

	connected := true
	if err := c.transport.Connect(ctx, username); err != nil {
		connected = false
		c.logEvent(log.LogEvent{Event: log.EventConnectFailed, Username: username, Error: err.Error()})
	}

	c.apply(loggedIn{username: username, campaignID: campaignID, roomID: c.opts.DefaultRoomID})
	if connected {
		c.transport.JoinRoom(c.opts.DefaultRoomID)
	} else {
		c.apply(bannerSet{text: "Connection failed. Real-time updates unavailable."})
	}
	c.logEvent(log.LogEvent{
		Event:      log.EventLoggedIn,
		Username:   username,
		RoomID:     c.opts.DefaultRoomID,
		CampaignID: campaignID,
	})
	return nil
}

// Logout disconnects the transport and resets to the LoggedOut state.
func (c *Controller) Logout() {
	c.transport.Disconnect()

	c.mu.Lock()
	c.state = State{Rooms: c.opts.Rooms, Campaigns: c.state.Campaigns}
	c.publishLocked()
	c.mu.Unlock()
}

// SwitchRoom leaves the old room, clears history, and joins the new room,
// in that order. No-op unless logged in.
func (c *Controller) SwitchRoom(roomID string) {
	c.mu.Lock()
	if !c.state.LoggedIn || roomID == c.state.ActiveRoomID {
		c.mu.Unlock()
		return
	}
	old := c.state.ActiveRoomID
	c.mu.Unlock()

	c.transport.LeaveRoom(old)
	c.apply(roomSwitched{roomID: roomID})
	c.transport.JoinRoom(roomID)
	c.logEvent(log.LogEvent{Event: log.EventRoomSwitched, RoomID: roomID})
}

// BeginTurn appends the locally-authored message, emits it over the
// transport, and registers an in-flight turn. Returns false for blank text
// or when not logged in; nothing is appended or emitted in that case.
//
// The returned Turn must be completed with CompleteTurn to fire the
// request/response half of the dual delivery.
func (c *Controller) BeginTurn(text string) (Turn, bool) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, false
	}

	c.mu.Lock()
	if !c.state.LoggedIn {
		c.mu.Unlock()
		return Turn{}, false
	}

	msg := chat.Message{
		ID:        c.ids.Next(),
		Text:      text,
		Sender:    c.state.Username,
		Timestamp: c.now().UnixMilli(),
	}
	turn := Turn{
		CorrelationID: c.newCID(),
		RoomID:        c.state.ActiveRoomID,
		CampaignID:    c.state.ActiveCampaignID,
		Text:          text,
	}
	c.state = Reduce(c.state, messageAppended{msg: msg})
	c.pending[turn.CorrelationID] = turn
	c.publishLocked()
	c.mu.Unlock()

	c.transport.SendMessage(turn.RoomID, text)
	c.logEvent(log.LogEvent{
		Event:         log.EventMessageSent,
		RoomID:        turn.RoomID,
		CampaignID:    turn.CampaignID,
		MessageID:     msg.ID,
		CorrelationID: turn.CorrelationID,
	})
	return turn, true
}

// CompleteTurn performs the chat-turn HTTP call for a turn started by
// BeginTurn and applies the reply. Failures become a system message in the
// room the turn was sent from; CompleteTurn itself never fails.
func (c *Controller) CompleteTurn(ctx context.Context, turn Turn) {
	r, diags, err := c.backend.SendChatTurn(ctx, api.ChatTurnRequest{
		UserID:         c.opts.UserID,
		ConversationID: c.opts.ConversationID,
		CampaignID:     turn.CampaignID,
		Message:        turn.Text,
		CorrelationID:  turn.CorrelationID,
	})
	if err != nil {
		c.logEvent(log.LogEvent{
			Event:         log.EventChatTurnFailed,
			RoomID:        turn.RoomID,
			CampaignID:    turn.CampaignID,
			CorrelationID: turn.CorrelationID,
			Error:         err.Error(),
		})
		c.failTurn(turn)
		return
	}

	c.applyReply(turn, r, diags)
}

// SubmitMessage is BeginTurn plus CompleteTurn in one blocking call, for
// callers without their own scheduling (tests, non-interactive use).
func (c *Controller) SubmitMessage(ctx context.Context, text string) {
	turn, ok := c.BeginTurn(text)
	if !ok {
		return
	}
	c.CompleteTurn(ctx, turn)
}

// LoadCampaigns refreshes the campaign list from the backend.
func (c *Controller) LoadCampaigns(ctx context.Context) error {
	campaigns, err := c.backend.ListCampaigns(ctx, c.opts.UserID)
	if err != nil {
		return err
	}
	c.apply(campaignsLoaded{campaigns: campaigns})
	return nil
}

// CreateCampaign creates a campaign, selects it, and refreshes the campaign
// list. A failed creation leaves the list untouched.
func (c *Controller) CreateCampaign(ctx context.Context, req api.CreateCampaignRequest) (int64, error) {
	req.UserID = c.opts.UserID
	id, err := c.backend.CreateCampaign(ctx, req)
	if err != nil {
		return 0, err
	}

	c.apply(campaignSelected{campaignID: id})
	c.logEvent(log.LogEvent{Event: log.EventCampaignCreated, CampaignID: id})

	// Refresh failures do not undo a successful creation.
	if err := c.LoadCampaigns(ctx); err != nil {
		c.logEvent(log.LogEvent{Event: log.EventChatTurnFailed, CampaignID: id, Error: err.Error()})
	}
	return id, nil
}

// SelectCampaign changes the active campaign (pre-login picker).
func (c *Controller) SelectCampaign(campaignID int64) {
	c.apply(campaignSelected{campaignID: campaignID})
}

// EditSequenceStep applies a local-only edit to one field of one sequence
// step. No round trip to the backend.
func (c *Controller) EditSequenceStep(stepKey, field, value string) {
	c.apply(stepEdited{stepKey: stepKey, field: field, value: value})
}

// handleTransportMessage appends a message delivered over the real-time
// connection. Messages tagged with a room other than the active one are
// dropped: delivery order across a room switch is not guaranteed, so the
// guard is by room id on receipt.
func (c *Controller) handleTransportMessage(msg chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.LoggedIn {
		return
	}
	if msg.RoomID != "" && msg.RoomID != c.state.ActiveRoomID {
		c.logEvent(log.LogEvent{Event: log.EventStaleReply, RoomID: msg.RoomID, MessageID: msg.ID})
		return
	}

	c.state = Reduce(c.state, messageAppended{msg: msg})
	c.publishLocked()
}

// handleAPIResponse handles assistant replies arriving over the real-time
// channel. This is the second arrival path of the dual delivery; replies
// whose correlation id was already rendered by the HTTP path are dropped.
func (c *Controller) handleAPIResponse(raw json.RawMessage) {
	var envelope struct {
		CorrelationID string `json:"correlation_id"`
	}
	_ = json.Unmarshal(raw, &envelope)

	r, diags := reply.Normalize(raw)

	turn := Turn{CorrelationID: envelope.CorrelationID}
	c.mu.Lock()
	if pending, ok := c.pending[envelope.CorrelationID]; ok {
		turn = pending
	} else {
		// Uncorrelated event: attribute it to the current scope.
		turn.RoomID = c.state.ActiveRoomID
		turn.CampaignID = c.state.ActiveCampaignID
	}
	c.mu.Unlock()

	c.applyReply(turn, r, diags)
}

// applyReply renders a normalized assistant reply exactly once per
// correlation id, guarded by the turn's captured room and campaign.
func (c *Controller) applyReply(turn Turn, r reply.Reply, diags []reply.Diagnostic) {
	for _, d := range diags {
		c.logEvent(log.LogEvent{
			Event:         log.EventPayloadMalformed,
			CorrelationID: turn.CorrelationID,
			Stage:         d.Stage,
			Detail:        d.Detail,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.CorrelationID != "" {
		if c.handled[turn.CorrelationID] {
			c.logEvent(log.LogEvent{Event: log.EventDuplicateReply, CorrelationID: turn.CorrelationID})
			return
		}
		c.handled[turn.CorrelationID] = true
		delete(c.pending, turn.CorrelationID)
	}

	if !c.state.LoggedIn {
		return
	}
	if turn.RoomID != c.state.ActiveRoomID || turn.CampaignID != c.state.ActiveCampaignID {
		c.logEvent(log.LogEvent{
			Event:         log.EventStaleReply,
			RoomID:        turn.RoomID,
			CampaignID:    turn.CampaignID,
			CorrelationID: turn.CorrelationID,
		})
		return
	}

	msg := chat.Message{
		ID:         c.ids.Next(),
		Text:       r.Message,
		Sender:     chat.SenderAssistant,
		Timestamp:  c.now().UnixMilli(),
		ActionTool: r.ActionTool,
	}
	c.state = Reduce(c.state, messageAppended{msg: msg})

	if r.SequenceUpdate != nil {
		c.state = Reduce(c.state, sequenceApplied{seq: r.SequenceUpdate})
		c.logEvent(log.LogEvent{
			Event:      log.EventSequenceUpdated,
			SequenceID: r.SequenceUpdate.ID,
			CampaignID: r.SequenceUpdate.CampaignID,
		})
	}
	c.publishLocked()
}

// failTurn appends a system-sender error message for a failed chat turn,
// unless the turn's scope is no longer active.
func (c *Controller) failTurn(turn Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, turn.CorrelationID)
	if !c.state.LoggedIn || turn.RoomID != c.state.ActiveRoomID {
		return
	}

	msg := chat.Message{
		ID:        c.ids.Next(),
		Text:      errorReplyText,
		Sender:    chat.SenderSystem,
		Timestamp: c.now().UnixMilli(),
	}
	c.state = Reduce(c.state, messageAppended{msg: msg})
	c.publishLocked()
}

// apply runs one reducer action under the lock and publishes the result.
func (c *Controller) apply(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	c.publishLocked()
}

// publishLocked pushes the current state onto the updates channel,
// conflating with any undelivered snapshot. Caller holds c.mu.
func (c *Controller) publishLocked() {
	select {
	case c.updates <- c.state:
	default:
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- c.state:
		default:
		}
	}
}

func (c *Controller) logEvent(event log.LogEvent) {
	if c.logger == nil {
		return
	}
	_ = c.logger.Append(event)
}
