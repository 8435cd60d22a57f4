package domain

// ChunkCursor is the resumable work queue over the processing units of the
// currently active day. It lives inside the tracking document, so every
// mutation becomes durable on the next save.
//
// Invariant: Processed and Pending partition the unit set established at
// Begin, with no overlap and no duplicates.
type ChunkCursor struct {
	ActiveDay DayKey   `json:"active_day,omitempty"`
	Processed []string `json:"channels_processed"`
	Pending   []string `json:"channels_pending"`
}

// Begin starts draining a day over the given units, in order.
func (c *ChunkCursor) Begin(day DayKey, unitIDs []string) {
	c.ActiveDay = day
	c.Processed = []string{}
	c.Pending = append([]string{}, unitIDs...)
}

// Active reports whether a day is currently being drained.
func (c *ChunkCursor) Active() bool {
	return c.ActiveDay != ""
}

// Peek returns the next unit to process without removing it.
func (c *ChunkCursor) Peek() (string, bool) {
	if len(c.Pending) == 0 {
		return "", false
	}
	return c.Pending[0], true
}

// Complete moves a unit from pending to processed. Calling it twice for the
// same id, or for an id the cursor has never seen, is a no-op.
func (c *ChunkCursor) Complete(unitID string) {
	for _, done := range c.Processed {
		if done == unitID {
			return
		}
	}
	for i, id := range c.Pending {
		if id == unitID {
			c.Pending = append(c.Pending[:i], c.Pending[i+1:]...)
			c.Processed = append(c.Processed, unitID)
			return
		}
	}
}

// IsDrained reports whether every unit of the active day has been processed.
func (c *ChunkCursor) IsDrained() bool {
	return len(c.Pending) == 0
}

// Reset clears the cursor once the active day has been finalized.
func (c *ChunkCursor) Reset() {
	c.ActiveDay = ""
	c.Processed = []string{}
	c.Pending = []string{}
}
