package irc

import "time"

// Event is the marker type satisfied by every payload delivered through a
// Callbacks slot.
type Event interface{}

// Callbacks is the public event surface (C12): one function slot per
// notification the engine can emit. A nil slot is simply never called.
// Every call happens synchronously, on the goroutine that drove the engine
// (§5) — the engine starts none of its own.
type Callbacks struct {
	OnConnect func(RegisteredEvent)
	OnRaw     func(RawEvent)
	OnSend    func(RawEvent) // debug: mirrors every outgoing line.

	OnMessage func(MessageEvent)

	OnJoin func(JoinEvent)
	OnPart func(PartEvent)
	OnKick func(KickEvent)
	OnQuit func(QuitEvent)
	OnNick func(NickEvent)

	OnMode        func(ModeEvent)
	OnTopicChange func(TopicChangeEvent)
	OnInvite      func(InviteEvent)
	OnChgHost     func(ChgHostEvent)

	OnWhois func(WhoisEvent)

	OnList              func(ListEvent)
	OnNamesReply        func(NamesReplyEvent)
	OnTopicWhoTimeReply func(TopicWhoTimeEvent)
	OnTopicReply        func(TopicChangeEvent)
	OnVersionReply      func(VersionReplyEvent)
	OnServerRehashing   func(RehashingEvent)
	OnYoureOper         func()

	OnReceiveCapLS   func(CapEvent)
	OnReceiveCapList func(CapEvent)
	OnReceiveCapAck  func(CapEvent)
	OnReceiveCapNak  func(CapEvent)
	OnReceiveCapNew  func(CapEvent)
	OnReceiveCapDel  func(CapEvent)

	OnUserOnline        func(UserOnlineEvent)
	OnUserOffline       func(UserOfflineEvent)
	OnMonitorList       func(MonitorListEvent)
	OnChannelListUpdate func(ListEvent)

	OnWHOXReply func(WHOXReplyEvent)

	OnAwayReply     func(AwayEvent)
	OnUnAwayReply   func()
	OnOtherUserAway func(AwayEvent)
	OnBack          func()
	OnIsOn          func(IsOnEvent)

	OnMetadataSubList func(MetadataSubListEvent)

	OnLogin  func(LoginEvent)
	OnLogout func(LogoutEvent)

	OnWallops func(WallopsEvent)
	OnLUsers  func(LUsersEvent)

	OnError func(ErrorEvent)
}

// RawEvent mirrors one raw protocol line, in or out, for debugging (§4.12).
type RawEvent struct {
	Line string
}

// MessageMetadata carries the provenance common to every dispatched
// message (§4.8 point 1): the raw source line, enclosing batch (if any),
// message-tags, and the best-effort timestamp (server-time tag, else now).
type MessageMetadata struct {
	Raw   string
	Batch *Batch
	Tags  map[string]string
	Time  time.Time
}

// RegisteredEvent fires once registration completes (welcome numeral 001).
type RegisteredEvent struct {
	Nick string
}

type MessageEvent struct {
	Meta            MessageMetadata
	Source          *User
	Target          string
	TargetIsChannel bool
	Command         string // PRIVMSG, NOTICE, or TAGMSG.
	Content         string
	IsEcho          bool
}

type JoinEvent struct {
	Meta    MessageMetadata
	Source  *User
	Channel string
	Self    bool
}

type PartEvent struct {
	Meta    MessageMetadata
	Source  *User
	Channel string
	Reason  string
	Self    bool
}

type KickEvent struct {
	Meta    MessageMetadata
	Source  *User
	Channel string
	Target  string
	Reason  string
	Self    bool
}

type QuitEvent struct {
	Meta     MessageMetadata
	Source   *User
	Reason   string
	Channels []string
	Self     bool
}

type NickEvent struct {
	Meta       MessageMetadata
	Source     *User
	FormerNick string
	NewNick    string
	Self       bool
}

type ModeEvent struct {
	Meta   MessageMetadata
	Source *User
	Target string // channel name or nickname.
	Change ModeChange
}

type TopicChangeEvent struct {
	Meta    MessageMetadata
	Source  *User
	Channel string
	Topic   string
}

type TopicWhoTimeEvent struct {
	Channel string
	Who     *Prefix
	SetAt   time.Time
}

type InviteEvent struct {
	Meta    MessageMetadata
	Inviter *User
	Invitee string
	Channel string
}

type ChgHostEvent struct {
	Meta   MessageMetadata
	Source *User
	Ident  string
	Host   string
}

type WhoisEvent struct {
	User     *User
	Response *WhoisResponse
}

type ListEvent struct {
	Channel string
	Visible int
	Topic   string
	End     bool
}

type NamesReplyEvent struct {
	Channel string
	Names   []NameEntry
	End     bool
}

type VersionReplyEvent struct {
	Version string
	Server  string
	Comment string
}

type RehashingEvent struct {
	ConfigFile string
}

type CapEvent struct {
	Caps []Capability
}

type UserOnlineEvent struct {
	Nick string
	Time time.Time
}

type UserOfflineEvent struct {
	Nick string
}

type MonitorListEvent struct {
	Nicks []string
	End   bool
	Full  bool
}

type WHOXReplyEvent struct {
	Channel string
	User    *User
	Flags   string
}

type AwayEvent struct {
	Nick    string
	Message string
}

type IsOnEvent struct {
	Nick string
}

type MetadataSubListEvent struct {
	Keys []string
}

type LoginEvent struct {
	Nick    string
	Account string
}

type LogoutEvent struct {
	Nick string
}

type WallopsEvent struct {
	Source  *User
	Message string
}

type LUsersEvent struct {
	Clients int
	Servers int
}
