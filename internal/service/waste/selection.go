package waste

// NothingFoundMessage accompanies the NothingFound result.
const NothingFoundMessage = "No waste detected in the image"

// unknownClass stands in for a detection that carries no label.
const unknownClass = "unknown"

// Result is the outcome of classifying one image.
type Result struct {
	Found         bool
	Category      Category
	Key           string
	ClassID       int
	OriginalClass string
	Confidence    float64
	Message       string
}

// Select returns the resolved detection with the highest confidence. On ties
// the earlier entry wins. An empty input yields the NothingFound result.
func Select(resolved []Resolved) Result {
	if len(resolved) == 0 {
		return Result{
			Category: NothingFound,
			Message:  NothingFoundMessage,
		}
	}

	best := resolved[0]
	for _, r := range resolved[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}

	original := best.Label
	if original == "" {
		original = unknownClass
	}

	return Result{
		Found:         true,
		Category:      best.Category,
		Key:           best.Key,
		ClassID:       best.ClassID,
		OriginalClass: original,
		Confidence:    best.Confidence,
	}
}
