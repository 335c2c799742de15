package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAgentNotFound indicates that an agent with the given ID does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrPostNotFound indicates that no entry exists at the given address.
	ErrPostNotFound = errors.New("post not found")

	// ErrRecordNotFound indicates that a chain record with the given ID does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrChainEmpty indicates that an agent's chain has no records, which
	// means the genesis record is missing.
	ErrChainEmpty = errors.New("chain has no records")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrNicknameTaken indicates that an agent with the same nickname already exists.
	ErrNicknameTaken = errors.New("nickname already taken")

	// ErrReplyTargetMissing indicates that in_reply_to names an address with
	// no committed entry.
	ErrReplyTargetMissing = errors.New("reply target does not exist")
)

// Authentication errors.
var (
	// ErrTokenInvalid indicates the bearer token failed fernet verification
	// or has expired.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrTokenMissing indicates no bearer token was supplied.
	ErrTokenMissing = errors.New("missing bearer token")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Agent operation errors
	ErrFailedToRetrieveAgents = errors.New("failed to retrieve agents")
	ErrFailedToRetrieveAgent  = errors.New("failed to retrieve agent")
	ErrFailedToCreateAgent    = errors.New("failed to create agent")

	// Post operation errors
	ErrFailedToRetrievePosts = errors.New("failed to retrieve posts")
	ErrFailedToRetrievePost  = errors.New("failed to retrieve post")
	ErrFailedToCreatePost    = errors.New("failed to create post")

	// Chain operation errors
	ErrFailedToRetrieveRecords = errors.New("failed to retrieve records")
	ErrFailedToAuditChains     = errors.New("failed to audit chains")

	// Peer operation errors
	ErrFailedToReachPeer    = errors.New("failed to reach peer")
	ErrFailedToImportRecord = errors.New("failed to import record")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")

	// Developer operation errors
	ErrFailedToRetrieveLogs = errors.New("failed to retrieve logs")
	ErrFailedToDeleteLogs   = errors.New("failed to delete logs")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a record references an entry that doesn't exist).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
