package planner

import "github.com/prosthocare/prostho-api/planner/entities"

// SummarizeArch derives the Kennedy classification for one arch from its
// detected spans. Callers must not pass an empty slice.
//
//	Any distal extension on both sides  -> Class I
//	Distal extension on one side        -> Class II
//	  (bounded spans count as modifications)
//	No distal extension, one bounded span crossing the midline -> Class IV
//	Otherwise Class III with count(bounded)-1 modifications.
func SummarizeArch(spans []entities.Span) entities.ArchSummary {
	var bounded, distal []entities.Span
	for _, s := range spans {
		if s.Type == entities.SpanBounded {
			bounded = append(bounded, s)
		} else {
			distal = append(distal, s)
		}
	}

	if len(distal) > 0 {
		sides := make(map[string]bool)
		for _, s := range distal {
			for _, t := range s.Missing {
				sides[t.Side()] = true
			}
		}
		klass := "Class II"
		if sides["R"] && sides["L"] {
			klass = "Class I"
		}
		return entities.ArchSummary{KennedyClass: klass, Modifications: len(bounded), Spans: len(spans)}
	}

	if len(bounded) == 1 && bounded[0].CrossMidline {
		return entities.ArchSummary{KennedyClass: "Class IV", Modifications: 0, Spans: len(spans)}
	}

	mods := len(bounded) - 1
	if mods < 0 {
		mods = 0
	}
	return entities.ArchSummary{KennedyClass: "Class III", Modifications: mods, Spans: len(spans)}
}
