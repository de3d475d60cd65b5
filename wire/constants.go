package wire

// CmdType is an M/Wire command verb.
type CmdType string

// Tag is the first byte of a response line and selects how the rest of the
// line (and any following payload) is decoded.
type Tag byte

// Protocol delimiters
const (
	// CRLF terminates every line and every payload body.
	CRLF = "\r\n"

	// Space separates command tokens.
	Space = " "
)

// Frame tags
const (
	TagStatus  Tag = '+'
	TagError   Tag = '-'
	TagInteger Tag = ':'
	TagBulk    Tag = '$'
	TagArray   Tag = '*'
)

// Commands with a defined wire behaviour.
//
// Wire format for addressed commands: <CMD> <root>[<subscripts>]\r\n
// SET is followed by a raw payload line, INCRBY and DECRBY by an amount.
const (
	CmdGet        CmdType = "GET"
	CmdSet        CmdType = "SET"
	CmdExists     CmdType = "EXISTS"
	CmdIncr       CmdType = "INCR"
	CmdIncrBy     CmdType = "INCRBY"
	CmdDecr       CmdType = "DECR"
	CmdDecrBy     CmdType = "DECRBY"
	CmdKill       CmdType = "KILL"
	CmdNext       CmdType = "NEXT"
	CmdPrevious   CmdType = "PREVIOUS"
	CmdQuery      CmdType = "QUERY"
	CmdQueryGet   CmdType = "QUERYGET"
	CmdGetAllSubs CmdType = "GETALLSUBS"
	CmdGetSubtree CmdType = "GETSUBTREE"
	CmdPing       CmdType = "PING"
	CmdHalt       CmdType = "HALT"
)

// Commands the protocol names but for which no wire behaviour is defined.
// They are never written by this package.
const (
	CmdSetSubtree CmdType = "SETSUBTREE"
	CmdFunction   CmdType = "FUNCTION"
	CmdLock       CmdType = "LOCK"
	CmdUnlock     CmdType = "UNLOCK"
	CmdMDate      CmdType = "MDATE"
	CmdMonitor    CmdType = "MONITOR"
	CmdMVersion   CmdType = "MVERSION"
	CmdVersion    CmdType = "VERSION"
	CmdTStart     CmdType = "TSTART"
	CmdTCommit    CmdType = "TCOMMIT"
	CmdTRollback  CmdType = "TROLLBACK"
)

// Success markers. These are not uniform across commands; the gateway's
// observed behaviour is authoritative over the protocol document.
const (
	// SetOK is the payload line that follows a bulk header after SET.
	SetOK = `{"ok":true}`

	// KillOK is the status line returned by KILL (lowercase).
	KillOK = "+ok"

	// PingOK is the status line returned by PING.
	PingOK = "+PONG"

	// NilBulk is the bulk header for an absent value. QUERYGET sends it bare
	// in place of an array.
	NilBulk = "$-1"
)

// DefaultChunkSize bounds a single read when receiving a bulk payload.
// Larger payloads are accumulated across several reads.
const DefaultChunkSize = 1 << 19
