// Package session assigns the case id which groups the events of one capture
// lifetime into a trace.
package session

import (
	"math/rand"
	"strconv"
	"time"
)

const (
	prefix       = "session_"
	suffixLength = 7
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewCaseID returns "session_<epoch millis>_<random base36 suffix>". Two
// ids created in the same millisecond differ only by the random suffix.
func NewCaseID() string {
	return newCaseID(time.Now(), rand.Intn)
}

func newCaseID(now time.Time, intn func(int) int) string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = base36[intn(len(base36))]
	}
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// Identity holds the case id of one capture lifetime.
type Identity struct {
	caseID string
}

// NewIdentity creates an Identity with a freshly generated case id.
func NewIdentity() *Identity {
	return &Identity{caseID: NewCaseID()}
}

// CaseID returns the same value for the whole lifetime of the Identity.
func (i *Identity) CaseID() string {
	return i.caseID
}
