package summary

// Sentiment curve labels for the customer's trajectory across the
// conversation's quarters.
const (
	CurveS     = "S" // recovering: starts low, ends higher
	CurveZ     = "Z" // declining: starts high, ends lower
	CurveOther = "Other"
)

// curveThreshold is the minimum distance between the opening quarter and the
// merged middle before a trend counts as S or Z. Contractual, do not re-tune.
const curveThreshold = 1.0

// classifyCurve labels a 4-point quarterly sentiment sequence. The two middle
// quarters are averaged into one value, giving [q0, mid, q3]:
//
//	S when q0 <= mid-1 and mid < q3
//	Z when q0 >= mid+1 and mid > q3
//
// anything else is Other. Fewer or more than four samples means the engine
// did not produce quarterly data for this conversation, so there is no curve.
func classifyCurve(quarters []PeriodScore) string {
	if len(quarters) != 4 {
		return ""
	}

	q0 := quarters[0].Score
	mid := (quarters[1].Score + quarters[2].Score) / 2
	q3 := quarters[3].Score

	switch {
	case q0 <= mid-curveThreshold && mid < q3:
		return CurveS
	case q0 >= mid+curveThreshold && mid > q3:
		return CurveZ
	default:
		return CurveOther
	}
}
