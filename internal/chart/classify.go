package chart

import "fmt"

// Classification is the tri-state verdict of a value against its band.
// It is derived on demand and never stored.
type Classification int

const (
	Deficient Classification = iota
	Optimal
	Excessive
)

var classNames = [...]string{"Deficient", "Optimal", "Excessive"}

func (c Classification) String() string {
	if c < Deficient || c > Excessive {
		return fmt.Sprintf("Classification(%d)", int(c))
	}
	return classNames[c]
}

// MarshalText encodes the classification as its lowercase name.
func (c Classification) MarshalText() ([]byte, error) {
	switch c {
	case Deficient:
		return []byte("deficient"), nil
	case Optimal:
		return []byte("optimal"), nil
	case Excessive:
		return []byte("excessive"), nil
	}
	return nil, fmt.Errorf("unknown classification %d", int(c))
}

// Classify maps value against band. Both bounds are inclusive-optimal.
// The band is not validated here; construct it with NewRangeBand.
func Classify(value float64, band RangeBand) Classification {
	switch {
	case value < band.Low:
		return Deficient
	case value > band.High:
		return Excessive
	default:
		return Optimal
	}
}

// ClassifySeries classifies every metric of s in order.
func ClassifySeries(s MetricSeries) []Classification {
	out := make([]Classification, s.Len())
	for i := range out {
		out[i] = Classify(s.Values[i], s.Band(i))
	}
	return out
}

// ClassColor returns the fixed default display color for c.
func ClassColor(c Classification) Color {
	return DefaultPalette().ForClass(c)
}
