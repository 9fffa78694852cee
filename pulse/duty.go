package pulse

// Segments are the carrier high and low lengths in microseconds
type Segments struct {
	High uint32
	Low  uint32
}

// Resolve splits a carrier period into high and low segments.
// 0% and 100% produce a single full-period segment. Any other duty never
// yields a zero-length segment: a rounding result of 0 is forced to 1us.
func Resolve(periodUS, dutyPercent uint32) Segments {
	if dutyPercent > 100 {
		dutyPercent = 100
	}
	switch dutyPercent {
	case 0:
		return Segments{High: 0, Low: periodUS}
	case 100:
		return Segments{High: periodUS, Low: 0}
	}

	high := uint32((uint64(periodUS)*uint64(dutyPercent) + 99) / 100)
	if high > periodUS {
		high = periodUS
	}
	low := periodUS - high

	if high == 0 {
		high = 1
	}
	if low == 0 {
		low = 1
	}
	return Segments{High: high, Low: low}
}

// Period returns the sum of both segments
func (s Segments) Period() uint32 {
	return s.High + s.Low
}
