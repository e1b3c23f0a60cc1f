package errs

// Internal classification codes. The wire `code` string a client sees is
// the Msg field below (e.g. "MALFORMED"); Code is only used for Is-style
// grouping and metrics labels inside the server.
const (
	CodeMalformed          = 1000
	CodeUnauthenticated    = 1001
	CodeNoParty            = 1010
	CodePartyNotFound      = 1011
	CodeNotPartyMember     = 1012
	CodeQueueRejected      = 1013
	CodeInstanceFailed     = 1014
	CodeMatchNotFound      = 1015
	CodeInstanceNotFound   = 1020
	CodeInvalidTicket      = 1021
	CodeInvalidState       = 1022
	CodeNoInstance         = 1023
	CodeCharNotSet         = 1024
	CodeRewardDuplicate    = 1030
	CodeRewardFailed       = 1031
	CodeInventoryFailed    = 1032
	CodeUserAlreadyBound   = 1040
	CodeInvalidCredentials = 1041
)

var (
	ErrMalformed          = CodeError{Code: CodeMalformed, Msg: "MALFORMED"}
	ErrUnauthenticated    = CodeError{Code: CodeUnauthenticated, Msg: "UNAUTHENTICATED"}
	ErrNoParty            = CodeError{Code: CodeNoParty, Msg: "NO_PARTY"}
	ErrPartyNotFound      = CodeError{Code: CodePartyNotFound, Msg: "PARTY_NOT_FOUND"}
	ErrNotPartyMember     = CodeError{Code: CodeNotPartyMember, Msg: "NOT_PARTY_MEMBER"}
	ErrQueueRejected      = CodeError{Code: CodeQueueRejected, Msg: "QUEUE_REJECTED"}
	ErrInstanceFailed     = CodeError{Code: CodeInstanceFailed, Msg: "INSTANCE_FAILED"}
	ErrMatchNotFound      = CodeError{Code: CodeMatchNotFound, Msg: "MATCH_NOT_FOUND"}
	ErrInstanceNotFound   = CodeError{Code: CodeInstanceNotFound, Msg: "INSTANCE_NOT_FOUND"}
	ErrInvalidTicket      = CodeError{Code: CodeInvalidTicket, Msg: "INVALID_TICKET"}
	ErrInvalidState       = CodeError{Code: CodeInvalidState, Msg: "INVALID_STATE"}
	ErrNoInstance         = CodeError{Code: CodeNoInstance, Msg: "NO_INSTANCE"}
	ErrCharNotSet         = CodeError{Code: CodeCharNotSet, Msg: "CHAR_NOT_SET"}
	ErrRewardDuplicate    = CodeError{Code: CodeRewardDuplicate, Msg: "REWARD_DUPLICATE"}
	ErrRewardFailed       = CodeError{Code: CodeRewardFailed, Msg: "REWARD_FAILED"}
	ErrInventoryFailed    = CodeError{Code: CodeInventoryFailed, Msg: "INVENTORY_FAILED"}
	ErrUserAlreadyBound   = CodeError{Code: CodeUserAlreadyBound, Msg: "USER_ALREADY_BOUND"}
	ErrInvalidCredentials = CodeError{Code: CodeInvalidCredentials, Msg: "INVALID_CREDENTIALS"}
)
