package emotion

import (
	"fmt"
	"math"
	"strings"
)

// Label is a coarse emotion tag attached to a chat turn.
type Label string

const (
	Neutral      Label = "neutral"
	Happy        Label = "happy"
	Sad          Label = "sad"
	Angry        Label = "angry"
	Fearful      Label = "fearful"
	Excited      Label = "excited"
	Curious      Label = "curious"
	Affectionate Label = "affectionate"
)

// Descriptor is the annotation stored next to a turn.
// Probabilities are scored independently per label and need not sum to 1.
type Descriptor struct {
	Emotion       Label
	Text          string
	Probabilities map[string]float64
}

// labels fixes iteration order so ties resolve the same way every call.
var labels = []Label{Happy, Sad, Angry, Fearful, Excited, Curious, Affectionate}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "glad", "great", "awesome", "amazing", "thanks", "thank you", "lol", "haha", "nice",
		"wonderful", "delighted", "good news", "yay",
	},
	Sad: {
		"sad", "unhappy", "cry", "depressed", "lonely", "hurt", "upset", "miss you", "heartbroken",
		"sorrow", "grief", "disappointed", "tired of",
	},
	Angry: {
		"angry", "furious", "rage", "mad at", "annoyed", "pissed", "hate", "outrage", "fed up", "ridiculous",
	},
	Fearful: {
		"afraid", "scared", "fear", "worried", "anxious", "nervous", "panic", "terrified", "unsafe",
	},
	Excited: {
		"excited", "can't wait", "cant wait", "wow", "incredible", "unbelievable", "hype", "thrilled",
		"let's go", "finally",
	},
	Curious: {
		"why", "how does", "how do", "what if", "wonder", "curious", "explain", "tell me about", "what is",
	},
	Affectionate: {
		"love", "adore", "dear", "sweetheart", "hug", "care about", "miss you", "beloved", "<3",
	},
}

var punctuationBoost = map[Label]int{
	Happy:   1,
	Excited: 2,
	Curious: 2,
}

const (
	keywordWeight = 3
	// scale of the saturating curve mapping a raw score to a probability
	scoreScale = 6.0
	// probability the prior label keeps when the text carries no signal
	priorCarry = 0.35
)

var descriptions = map[Label]string{
	Neutral:      "calm and even",
	Happy:        "warm and upbeat",
	Sad:          "heavy and subdued",
	Angry:        "frustrated and tense",
	Fearful:      "uneasy and anxious",
	Excited:      "energized and eager",
	Curious:      "inquisitive and open",
	Affectionate: "tender and close",
}

// Annotate scores text against the lexicon and returns a descriptor plus the
// cursor to carry into the next call. Text without any signal drifts back to
// prior rather than snapping to neutral.
func Annotate(text string, prior Label) (*Descriptor, Label) {
	if prior == "" {
		prior = Neutral
	}

	scores := scoreText(text)

	best, bestScore := Neutral, 0
	for _, label := range labels {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}

	probs := make(map[string]float64, len(labels)+1)
	for _, label := range labels {
		probs[string(label)] = probability(scores[label])
	}

	if bestScore == 0 {
		if prior != Neutral {
			probs[string(prior)] = priorCarry
		}
		probs[string(Neutral)] = 1 - priorCarry
		return &Descriptor{
			Emotion:       prior,
			Text:          describe(prior, 0),
			Probabilities: probs,
		}, prior
	}

	probs[string(Neutral)] = round(math.Exp(-float64(bestScore) / scoreScale))
	return &Descriptor{
		Emotion:       best,
		Text:          describe(best, bestScore),
		Probabilities: probs,
	}, best
}

func scoreText(text string) map[Label]int {
	scores := make(map[Label]int, len(labels))
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return scores
	}

	for _, label := range labels {
		for _, word := range keywordBuckets[label] {
			if strings.Contains(normalized, word) {
				scores[label] += keywordWeight
			}
		}
	}

	if n := strings.Count(text, "!"); n > 0 {
		scores[Excited] += n * punctuationBoost[Excited]
		if n == 1 {
			scores[Happy] += punctuationBoost[Happy]
		}
	}
	if strings.Contains(text, "?") {
		scores[Curious] += punctuationBoost[Curious]
	}
	return scores
}

func probability(score int) float64 {
	if score <= 0 {
		return 0
	}
	return round(1 - math.Exp(-float64(score)/scoreScale))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func describe(label Label, score int) string {
	base, ok := descriptions[label]
	if !ok {
		base = descriptions[Neutral]
	}
	switch {
	case score == 0:
		return fmt.Sprintf("lingering %s: %s", label, base)
	case score >= 2*scoreScale:
		return fmt.Sprintf("strongly %s: %s", label, base)
	default:
		return fmt.Sprintf("%s: %s", label, base)
	}
}

// Lexicon is the default annotator backed by Annotate.
type Lexicon struct{}

func (Lexicon) Annotate(text string, prior Label) (*Descriptor, Label) {
	return Annotate(text, prior)
}
