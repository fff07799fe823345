package task

// UndoBuffer holds at most one deleted task. Capturing a new record
// replaces the previous one, so only the most recent deletion can be undone.
type UndoBuffer struct {
	rec *DeletedRecord
}

// Capture stores a value copy of rec, replacing any held record.
func (b *UndoBuffer) Capture(rec DeletedRecord) {
	c := DeletedRecord{Task: rec.Task.Clone(), Index: rec.Index}
	b.rec = &c
}

// Consume returns the held record and clears the buffer. ok is false when
// the buffer is empty.
func (b *UndoBuffer) Consume() (rec DeletedRecord, ok bool) {
	if b.rec == nil {
		return DeletedRecord{}, false
	}
	rec = *b.rec
	b.rec = nil
	return rec, true
}

// Peek returns a copy of the held record without clearing it.
func (b *UndoBuffer) Peek() (DeletedRecord, bool) {
	if b.rec == nil {
		return DeletedRecord{}, false
	}
	return DeletedRecord{Task: b.rec.Task.Clone(), Index: b.rec.Index}, true
}

// Clear drops the held record.
func (b *UndoBuffer) Clear() {
	b.rec = nil
}

// Pending reports whether a record is held.
func (b *UndoBuffer) Pending() bool {
	return b.rec != nil
}
