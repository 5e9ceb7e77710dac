package emotion

import "testing"

func TestAnnotateDetectsLabel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{"sad", "I feel so lonely and sad today", Sad},
		{"angry", "I'm furious, this is ridiculous", Angry},
		{"excited", "wow I can't wait!!!", Excited},
		{"curious", "why does the sky look blue", Curious},
		{"affectionate", "I love you, sending a hug", Affectionate},
		{"fearful", "I'm scared and anxious about tomorrow", Fearful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, next := Annotate(tt.text, Neutral)
			if d == nil {
				t.Fatal("expected a descriptor")
			}
			if d.Emotion != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, d.Emotion)
			}
			if next != tt.want {
				t.Fatalf("expected cursor %s, got %s", tt.want, next)
			}
			if d.Text == "" {
				t.Fatal("expected a description")
			}
		})
	}
}

func TestAnnotateCarriesPriorWithoutSignal(t *testing.T) {
	d, next := Annotate("ok", Sad)
	if d.Emotion != Sad || next != Sad {
		t.Fatalf("expected prior sad to carry over, got %s / %s", d.Emotion, next)
	}
	if d.Probabilities[string(Sad)] <= 0 {
		t.Fatalf("expected non-zero probability for carried label, got %v", d.Probabilities)
	}
}

func TestAnnotateDefaultsToNeutral(t *testing.T) {
	d, next := Annotate("", "")
	if d.Emotion != Neutral || next != Neutral {
		t.Fatalf("expected neutral, got %s / %s", d.Emotion, next)
	}
}

func TestAnnotateIsDeterministic(t *testing.T) {
	a, _ := Annotate("thanks, I love this! why is it so good?", Neutral)
	b, _ := Annotate("thanks, I love this! why is it so good?", Neutral)
	if a.Emotion != b.Emotion {
		t.Fatalf("expected stable label, got %s and %s", a.Emotion, b.Emotion)
	}
	for k, v := range a.Probabilities {
		if b.Probabilities[k] != v {
			t.Fatalf("probability for %s drifted: %v vs %v", k, v, b.Probabilities[k])
		}
	}
}

func TestAnnotateProbabilitiesInRange(t *testing.T) {
	d, _ := Annotate("happy happy great awesome amazing wow!!!!!!", Neutral)
	for k, v := range d.Probabilities {
		if v < 0 || v > 1 {
			t.Fatalf("probability for %s out of range: %v", k, v)
		}
	}
}
