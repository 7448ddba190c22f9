package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionGenerator("test-session-001")
	for i := 0; i < 5; i++ {
		assert.Equal(t, "test-session-001", gen.Generate())
	}
}

func TestFixedSessionGenerator_DefaultID(t *testing.T) {
	gen := NewFixedSessionGenerator("")
	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestFixedSessionGenerator_Concurrent(t *testing.T) {
	gen := NewFixedSessionGenerator("s")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "s", gen.Generate())
		}()
	}
	wg.Wait()
}
