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

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxDeliveries is the number of delivery IDs remembered by default.
const DefaultMaxDeliveries = 1000

// DeliveryTracker remembers the most recent X-GitHub-Delivery IDs so that
// redelivered events are acknowledged without repeating work.
//
// Eviction is FIFO by insertion order. Seen and Remember never touch the
// recency of an entry that is already present, so the underlying LRU list
// degenerates to an insertion-ordered queue. The cache is safe for
// concurrent use.
type DeliveryTracker struct {
	ids *lru.Cache[string, struct{}]
}

// NewDeliveryTracker creates a tracker holding at most capacity IDs.
func NewDeliveryTracker(capacity int) (*DeliveryTracker, error) {
	ids, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery tracker: %w", err)
	}
	return &DeliveryTracker{ids: ids}, nil
}

// Seen reports whether id has been remembered and not yet evicted.
func (t *DeliveryTracker) Seen(id string) bool {
	return t.ids.Contains(id)
}

// Remember records id, evicting the oldest remembered ID if the tracker is
// full. It returns false if id was already present.
func (t *DeliveryTracker) Remember(id string) bool {
	found, _ := t.ids.ContainsOrAdd(id, struct{}{})
	return !found
}

// Len returns the number of remembered IDs.
func (t *DeliveryTracker) Len() int {
	return t.ids.Len()
}
