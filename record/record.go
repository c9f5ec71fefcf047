// Package record defines the wire formats stored in the coordination
// service (CS) and the process-local view of lease state derived from
// them.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatLeaseRecord encodes the LeaseRecord payload: an opaque host:port
// identity, UTF-8 encoded. The bytes are advisory; the CS version is the
// true lease token.
func FormatLeaseRecord(hostAndPort string) []byte {
	return []byte(hostAndPort)
}

// ParseLeaseRecord decodes a LeaseRecord payload back into a host:port
// string.
func ParseLeaseRecord(payload []byte) string {
	return string(payload)
}

// CurrentTSORecord is the decoded form of the CURRENT znode/key: the
// host:port of the replica that published it, plus the epoch it minted on
// promotion.
type CurrentTSORecord struct {
	HostAndPort string
	Epoch       int64
}

// Format encodes a CurrentTSORecord as "<host:port>#<epoch>": a single '#'
// separator, no whitespace, no trailing newline. Bit-exact per the
// coordination contract.
func (r CurrentTSORecord) Format() []byte {
	return []byte(r.HostAndPort + "#" + strconv.FormatInt(r.Epoch, 10))
}

// ParseCurrentTSORecord parses a CurrentTSORecord payload written by
// Format. An empty payload (nothing published yet) is not an error; it
// returns the zero value and ok=false. Anything else that fails to parse
// is a ParseError, since it indicates corruption of the coordination
// record.
func ParseCurrentTSORecord(payload []byte) (rec CurrentTSORecord, ok bool, err error) {
	if len(payload) == 0 {
		return CurrentTSORecord{}, false, nil
	}
	s := string(payload)
	idx := strings.IndexByte(s, '#')
	if idx < 0 {
		return CurrentTSORecord{}, false, &ParseError{Payload: s, Reason: "missing '#' separator"}
	}
	hostAndPort := s[:idx]
	epochStr := s[idx+1:]
	if strings.IndexByte(epochStr, '#') >= 0 {
		return CurrentTSORecord{}, false, &ParseError{Payload: s, Reason: "more than one '#' separator"}
	}
	epoch, parseErr := strconv.ParseInt(epochStr, 10, 64)
	if parseErr != nil {
		return CurrentTSORecord{}, false, &ParseError{Payload: s, Reason: fmt.Sprintf("non-numeric epoch: %v", parseErr)}
	}
	if epoch < 0 {
		return CurrentTSORecord{}, false, &ParseError{Payload: s, Reason: "negative epoch"}
	}
	return CurrentTSORecord{HostAndPort: hostAndPort, Epoch: epoch}, true, nil
}

// ParseError indicates that a CURRENT payload could not be parsed. It
// escalates to the Panicker: a malformed coordination record indicates
// corruption, not a transient condition.
type ParseError struct {
	Payload string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed current-tso record %q: %s", e.Payload, e.Reason)
}
