package wire

// Packet type codes, stable per the wire contract.
const (
	TypeLoginReq             uint16 = 1
	TypeLoginRes             uint16 = 2
	TypeVersionReject        uint16 = 3
	TypeLogoutReq            uint16 = 4
	TypeLogoutRes            uint16 = 5
	TypeSessionReconnectReq  uint16 = 6
	TypeSessionReconnectRes  uint16 = 7

	TypePartyCreateReq  uint16 = 100
	TypePartyCreateRes  uint16 = 101
	TypePartyInviteReq  uint16 = 102
	TypePartyInviteRes  uint16 = 103
	TypePartyAcceptReq  uint16 = 104
	TypePartyAcceptRes  uint16 = 105
	TypePartyDisbandReq uint16 = 106
	TypePartyDisbandRes uint16 = 107
	TypePartyEvent      uint16 = 108

	TypeGuildCreateReq uint16 = 200
	TypeGuildCreateRes uint16 = 201
	TypeGuildJoinReq   uint16 = 202
	TypeGuildJoinRes   uint16 = 203
	TypeGuildLeaveReq  uint16 = 204
	TypeGuildLeaveRes  uint16 = 205
	TypeGuildEvent     uint16 = 206

	TypeChatSendReq uint16 = 300
	TypeChatSendRes uint16 = 301
	TypeChatEvent   uint16 = 302

	TypeMatchReq          uint16 = 400
	TypeMatchFoundNotify  uint16 = 401

	TypeDungeonEnterReq     uint16 = 500
	TypeDungeonEnterRes     uint16 = 501
	TypeDungeonResultNotify uint16 = 502
	TypeDungeonResultRes    uint16 = 503

	TypeInventoryUpdateNotify uint16 = 600
	TypeInventoryUpdateRes    uint16 = 601
)

// PartyEventType and GuildEventType enumerate the u16 event subtype
// carried inside PartyEvent/GuildEvent payloads.
const (
	PartyEventMemberJoined   uint16 = 1
	PartyEventMemberLeft     uint16 = 2
	PartyEventLeaderChanged  uint16 = 3
	PartyEventDisbanded      uint16 = 4
	PartyEventInviteReceived uint16 = 5
	PartyEventInviteExpired  uint16 = 6
)

const (
	GuildEventMemberJoined uint16 = 1
	GuildEventMemberLeft   uint16 = 2
	GuildEventDisbanded    uint16 = 3
)

const (
	ChatEventGlobal uint16 = 1
	ChatEventParty  uint16 = 2
)

// DungeonResultCode carries the client-submitted result of an instance run.
const (
	DungeonResultClear uint16 = 1
	DungeonResultFail  uint16 = 2
)
