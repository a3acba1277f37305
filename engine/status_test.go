// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync"
	"testing"
)

func TestStatusCell_StoreLoad(t *testing.T) {
	t.Parallel()

	c := newStatusCell(7)
	if st := c.load(); st.ID != 7 || st.State != Pending {
		t.Errorf("new cell = %+v, want pending slot 7", st)
	}

	c.store(Transitioning, 1234, 0.75)
	want := Status{ID: 7, State: Transitioning, Position: 1234, Volume: 0.75}
	if st := c.load(); st != want {
		t.Errorf("load() = %+v, want %+v", st, want)
	}
}

// A reader never sees fields from two different stores.
func TestStatusCell_ConsistentUnderWrites(t *testing.T) {
	t.Parallel()

	c := newStatusCell(1)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Go(func() {
		for i := uint64(1); ; i++ {
			select {
			case <-done:
				return
			default:
			}
			c.store(Playing, i, float32(i%1000))
		}
	})

	for range 4 {
		wg.Go(func() {
			for range 10000 {
				st := c.load()
				if st.Position != 0 && st.Volume != float32(st.Position%1000) {
					t.Errorf("torn read: %+v", st)
					return
				}
			}
		})
	}

	// keep the writer running while the readers check
	for range 10000 {
		_ = c.load()
	}
	close(done)
	wg.Wait()
}
