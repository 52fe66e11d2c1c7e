package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	assert.NotEqual(t, gen.Generate(), gen.Generate())
}

func TestGenerateIsSortable(t *testing.T) {
	gen := NewGenerator()
	prev := gen.Generate().String()
	for i := 0; i < 100; i++ {
		next := gen.Generate().String()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestTypedIDs(t *testing.T) {
	shell := NewShellID()
	req := NewRequestID()
	conn := NewConnectionID()

	assert.True(t, strings.HasPrefix(shell.String(), "shell_"))
	assert.True(t, strings.HasPrefix(req.String(), "req_"))
	assert.True(t, strings.HasPrefix(conn.String(), "conn_"))

	assert.True(t, IsValid(shell.String(), ShellPrefix))
	assert.False(t, IsValid(shell.String(), RequestPrefix))
	assert.False(t, IsValid("shell_not-a-ulid", ShellPrefix))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewShellID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("shell_bogus")
	assert.Error(t, err)
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := gen.GenerateWithPrefix(ShellPrefix)
				mu.Lock()
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}
