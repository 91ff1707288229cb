package analysis

import "time"

// FrameEmotionResult is the classifier's verdict for a single video frame.
// Immutable once produced; Emotions is nil when no face was found.
type FrameEmotionResult struct {
	Emotions        map[string]float64 `json:"emotions,omitempty" bson:"emotions,omitempty"`
	DominantEmotion string             `json:"dominant_emotion,omitempty" bson:"dominant_emotion,omitempty"`
	Confidence      float64            `json:"confidence" bson:"confidence"`
	FaceDetected    bool               `json:"face_detected" bson:"face_detected"`
	BoundingBox     []int              `json:"bounding_box,omitempty" bson:"bounding_box,omitempty"`
	Timestamp       time.Time          `json:"timestamp" bson:"timestamp"`
}

// Valid reports whether the entry carries a usable emotion mapping.
func (r FrameEmotionResult) Valid() bool {
	return r.FaceDetected && len(r.Emotions) > 0
}

// EmotionSummary reduces a timeline to per-label averages. Averages is nil
// when the timeline holds no valid entries; callers must check Empty before
// reading the other fields rather than treating them as zeros.
type EmotionSummary struct {
	Averages       map[string]float64 `json:"averages,omitempty" bson:"averages,omitempty"`
	Dominant       string             `json:"dominant,omitempty" bson:"dominant,omitempty"`
	TotalFrames    int                `json:"total_frames" bson:"total_frames"`
	FramesWithFace int                `json:"frames_with_face" bson:"frames_with_face"`
	Confidence     float64            `json:"confidence" bson:"confidence"`
	DetectionRate  float64            `json:"detection_rate" bson:"detection_rate"`
}

func (s EmotionSummary) Empty() bool { return len(s.Averages) == 0 }

// SummarizeEmotions averages emotion scores over the valid entries of a
// timeline. Entries without a detected face or with an empty mapping are
// excluded from the averages but still counted in TotalFrames.
func SummarizeEmotions(timeline []FrameEmotionResult) EmotionSummary {
	if len(timeline) == 0 {
		return EmotionSummary{}
	}

	sums := make(map[string]float64)
	valid := 0
	for _, entry := range timeline {
		if !entry.Valid() {
			continue
		}
		valid++
		for label, score := range entry.Emotions {
			sums[label] += score
		}
	}
	if valid == 0 {
		return EmotionSummary{TotalFrames: len(timeline)}
	}

	averages := make(map[string]float64, len(sums))
	dominant := ""
	best := -1.0
	for label, sum := range sums {
		avg := sum / float64(valid)
		averages[label] = avg
		if avg > best {
			best = avg
			dominant = label
		}
	}

	return EmotionSummary{
		Averages:       averages,
		Dominant:       dominant,
		TotalFrames:    len(timeline),
		FramesWithFace: valid,
		Confidence:     averages[dominant],
		DetectionRate:  float64(valid) / float64(len(timeline)),
	}
}
