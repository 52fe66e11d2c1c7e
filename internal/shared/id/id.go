// Package id generates the identifiers used across the shell backend.
//
// Every identifier is a ULID with a short type prefix, so ids sort by
// creation time and read clearly in logs (shell_*, req_*, conn_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ShellID identifies a hosted shell (one web view plus its backstack)
type ShellID string

// RequestID identifies an API request
type RequestID string

// ConnectionID identifies a bridge connection
type ConnectionID string

const (
	ShellPrefix      = "shell"
	RequestPrefix    = "req"
	ConnectionPrefix = "conn"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so ids minted in the same millisecond still sort in order
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic ids in tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

func NewShellID() ShellID     { return ShellID(Default().GenerateWithPrefix(ShellPrefix)) }
func NewRequestID() RequestID { return RequestID(Default().GenerateWithPrefix(RequestPrefix)) }
func NewConnectionID() ConnectionID {
	return ConnectionID(Default().GenerateWithPrefix(ConnectionPrefix))
}

func (id ShellID) String() string      { return string(id) }
func (id RequestID) String() string    { return string(id) }
func (id ConnectionID) String() string { return string(id) }

// IsValid reports whether s is a prefixed id with the given prefix and a
// well-formed ULID body
func IsValid(s, prefix string) bool {
	body, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(body)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed id
func Timestamp(s string) (time.Time, error) {
	_, body, ok := strings.Cut(s, "_")
	if !ok {
		body = s
	}
	parsed, err := ulid.Parse(body)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
