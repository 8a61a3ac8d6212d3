package gate

// AdvanceBlock runs the note tracking for len(trace) samples starting at
// sample index start of the current block. Before sample s, every event with
// an offset <= start+s is applied in order. trace[s] receives whether a note
// is held for that sample. It returns the held note after the last sample and
// the number of events consumed; unconsumed events stay untouched.
//
// AdvanceBlock is pure and allocation free.
func AdvanceBlock(held ActiveNote, mode Mode, events []NoteEvent, start int32, trace []bool) (ActiveNote, int) {
	consumed := 0
	for s := range trace {
		pos := start + int32(s)
		for consumed < len(events) && events[consumed].Offset <= pos {
			held = Apply(held, events[consumed], mode)
			consumed++
		}
		trace[s] = held.Held()
	}
	return held, consumed
}

// Trace is a convenience wrapper around AdvanceBlock that allocates the
// per-sample gate trace for a whole block of nFrames samples.
func Trace(held ActiveNote, mode Mode, events []NoteEvent, nFrames int) (ActiveNote, []bool) {
	trace := make([]bool, nFrames)
	final, _ := AdvanceBlock(held, mode, events, 0, trace)
	return final, trace
}
