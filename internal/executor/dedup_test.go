package executor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerDetectsDuplicate(t *testing.T) {
	l := NewLedger(10)

	assert.False(t, l.CheckAndInsert("0xabc:0x111"))
	assert.True(t, l.CheckAndInsert("0xabc:0x111"))
	assert.False(t, l.CheckAndInsert("0xdef:0x111")) // same tx, different wallet
	assert.Equal(t, 2, l.Len())
}

func TestLedgerOverflowResetsToTriggeringKey(t *testing.T) {
	l := NewLedger(3)

	for i := 0; i < 3; i++ {
		l.CheckAndInsert(fmt.Sprintf("0xabc:%d", i))
	}
	assert.Equal(t, 3, l.Len())

	// Fourth distinct key overflows: everything is dropped except it.
	assert.False(t, l.CheckAndInsert("0xabc:overflow"))
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.CheckAndInsert("0xabc:overflow"))

	// A pre-overflow key is forgotten and passes again.
	assert.False(t, l.CheckAndInsert("0xabc:0"))
}

func TestLedgerConcurrentSingleWinner(t *testing.T) {
	l := NewLedger(100)

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.CheckAndInsert("0xabc:0x222")
		}()
	}
	wg.Wait()
	close(results)

	fresh := 0
	for dup := range results {
		if !dup {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
}
