package audiocore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSeqlockValue_ReadAfterWrite(t *testing.T) {
	v := NewSeqlockValue(0)
	v.Write(42)
	assert.Equal(t, 42, v.Read())
}

func TestSeqlockValue_ConcurrentWritesNeverTorn(t *testing.T) {
	type payload struct {
		A, B, C int64
	}
	v := NewSeqlockValue(payload{})

	var wg sync.WaitGroup
	wg.Add(1)
	stop := make(chan struct{})
	go func() {
		defer wg.Done()
		n := int64(1)
		for {
			select {
			case <-stop:
				return
			default:
				v.Write(payload{A: n, B: n, C: n})
				n++
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		p := v.Read()
		assert.Equal(t, p.A, p.B)
		assert.Equal(t, p.B, p.C)
	}

	close(stop)
	wg.Wait()
}

func TestSnapshotBuffer_PublishThenRead(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		buf := NewSnapshotBuffer[int]()
		n := rapid.IntRange(0, 1000).Draw(t, "n")
		for i := 0; i < n; i++ {
			buf.Publish(i)
		}
		if n > 0 {
			assert.Equal(t, n-1, buf.Read())
		}
		assert.Equal(t, uint32(n), buf.Available())
	})
}

func TestSnapshotBuffer_ReadBeforeAnyPublishIsZeroValue(t *testing.T) {
	buf := NewSnapshotBuffer[ControlBusFrame]()
	assert.Equal(t, ControlBusFrame{}, buf.Read())
	assert.Equal(t, uint32(0), buf.Available())
}
