package gesture

import "sort"

// ClassSummary aggregates the detections of one class within a frame.
type ClassSummary struct {
	ClassID       int
	Label         string
	Count         int
	MaxConfidence float32
	AvgConfidence float32
	// Top holds the highest confidences of the class, best first.
	Top []float32
}

// SummaryTopN is the number of confidences kept in ClassSummary.Top.
const SummaryTopN = 3

// Summarize groups detections by class, sorted by class id.
func Summarize(dets []Detection, labels *Labels) []ClassSummary {
	if len(dets) == 0 {
		return nil
	}

	byClass := make(map[int]*ClassSummary)
	sums := make(map[int]float64)
	confs := make(map[int][]float32)
	for _, d := range dets {
		s, ok := byClass[d.ClassID]
		if !ok {
			s = &ClassSummary{ClassID: d.ClassID, Label: labels.Label(d.ClassID)}
			byClass[d.ClassID] = s
		}
		s.Count++
		if d.Confidence > s.MaxConfidence {
			s.MaxConfidence = d.Confidence
		}
		sums[d.ClassID] += float64(d.Confidence)
		confs[d.ClassID] = append(confs[d.ClassID], d.Confidence)
	}

	out := make([]ClassSummary, 0, len(byClass))
	for id, s := range byClass {
		s.AvgConfidence = float32(sums[id] / float64(s.Count))
		top := confs[id]
		sort.SliceStable(top, func(i, j int) bool { return top[i] > top[j] })
		s.Top = top[:min(len(top), SummaryTopN)]
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClassID < out[j].ClassID
	})
	return out
}
