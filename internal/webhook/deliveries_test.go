// Copyright 2025 The Prscribe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func newTracker(t *testing.T, capacity int) *DeliveryTracker {
	t.Helper()

	tracker, err := NewDeliveryTracker(capacity)
	if err != nil {
		t.Fatalf("NewDeliveryTracker(%d) returned error: %v", capacity, err)
	}
	return tracker
}

func TestNewDeliveryTracker_RejectsNonPositiveCapacity(t *testing.T) {
	if _, err := NewDeliveryTracker(0); err == nil {
		t.Error("NewDeliveryTracker(0) expected error, got nil")
	}
}

func TestDeliveryTracker_SeenIsPure(t *testing.T) {
	tracker := newTracker(t, 10)

	if tracker.Seen("abc") {
		t.Error("Seen returns true for an unknown ID")
	}
	if tracker.Len() != 0 {
		t.Errorf("Seen inserted the ID: Len() = %d, expected 0", tracker.Len())
	}
}

func TestDeliveryTracker_Remember(t *testing.T) {
	tracker := newTracker(t, 10)

	if !tracker.Remember("abc") {
		t.Error("Remember returns false for a new ID")
	}
	if !tracker.Seen("abc") {
		t.Error("Seen returns false after Remember")
	}
	if tracker.Remember("abc") {
		t.Error("Remember returns true for an ID already present")
	}
	if tracker.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", tracker.Len())
	}
}

// TestDeliveryTracker_EvictsOldestInserted inserts N+k IDs and checks the first k are gone
func TestDeliveryTracker_EvictsOldestInserted(t *testing.T) {
	const capacity = DefaultMaxDeliveries
	const extra = 25

	tracker := newTracker(t, capacity)
	for i := 0; i < capacity+extra; i++ {
		tracker.Remember(fmt.Sprintf("delivery-%d", i))
	}

	if tracker.Len() != capacity {
		t.Fatalf("Len() = %d, expected %d", tracker.Len(), capacity)
	}
	for i := 0; i < extra; i++ {
		if tracker.Seen(fmt.Sprintf("delivery-%d", i)) {
			t.Errorf("delivery-%d still present, expected eviction", i)
		}
	}
	for i := extra; i < capacity+extra; i++ {
		if !tracker.Seen(fmt.Sprintf("delivery-%d", i)) {
			t.Errorf("delivery-%d missing, expected it to be retained", i)
		}
	}
}

// TestDeliveryTracker_LookupsDoNotRefresh checks eviction is FIFO rather than LRU
func TestDeliveryTracker_LookupsDoNotRefresh(t *testing.T) {
	tracker := newTracker(t, 3)

	tracker.Remember("a")
	tracker.Remember("b")
	tracker.Remember("c")

	// Touch "a" both ways; neither may move it to the back of the queue.
	tracker.Seen("a")
	tracker.Remember("a")

	tracker.Remember("d")

	if tracker.Seen("a") {
		t.Error("a survived eviction after lookups, expected FIFO order")
	}
	for _, id := range []string{"b", "c", "d"} {
		if !tracker.Seen(id) {
			t.Errorf("%s was evicted, expected it to be retained", id)
		}
	}
}

func TestDeliveryTracker_ConcurrentRemember(t *testing.T) {
	const capacity = 100
	tracker := newTracker(t, capacity)

	var inserted atomic.Int32
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if tracker.Remember(fmt.Sprintf("id-%d", i)) {
					inserted.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if tracker.Len() > capacity {
		t.Errorf("Len() = %d, exceeds capacity %d", tracker.Len(), capacity)
	}
	if inserted.Load() < 500 {
		t.Errorf("only %d insertions reported, expected at least 500", inserted.Load())
	}
}
