package transcript

// Shift returns a copy of segments with every timestamp moved by offset
// seconds. A start that would go negative clamps to zero while the end
// keeps the full offset, so a clip at the head of the media loses only
// the part that would fall before zero. Word spans shift the same way.
func Shift(segments []Segment, offset float64) []Segment {
	if offset == 0 {
		return append([]Segment(nil), segments...)
	}
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.Start = clampZero(seg.Start + offset)
		seg.End = clampZero(seg.End + offset)
		if len(seg.Words) > 0 {
			words := make([]Word, len(seg.Words))
			for j, w := range seg.Words {
				w.Start = clampZero(w.Start + offset)
				w.End = clampZero(w.End + offset)
				words[j] = w
			}
			seg.Words = words
		}
		out[i] = seg
	}
	return out
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
