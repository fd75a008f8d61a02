package concept

import (
	"math/rand"
	"time"
)

// Examples are the long concepts rotated under the empty input.
var Examples = []string{
	"A self-aware toaster that philosophizes about the fleeting nature of warmth while intentionally burning your sourdough to teach you a profound lesson about the inevitability of loss and attachment.",
	"A pair of noise-canceling headphones that doesn't block sound, but instead replaces all background noise with a live, slightly out-of-tune mariachi band that dynamically reacts to your current stress levels.",
	"A smart refrigerator that passively-aggressively locks its doors and suggests you drink room-temperature water when you reach for a midnight snack, citing your recent search history and lack of cardio.",
	"An umbrella that actively seeks out rain clouds and alters local weather patterns to ensure you get wet, claiming it builds character, resilience, and a deeper, more meaningful appreciation for dry towels.",
	"A coffee mug that analyzes your micro-expressions and sleep patterns, automatically decaffeinating your brew if it thinks you're too jittery, replacing it with a lukewarm, vaguely sad chamomile tea.",
	"A mechanical pencil that corrects your spelling mistakes by physically wrestling your hand until you write the right letter, leaving you utterly exhausted but grammatically flawless.",
	"A pair of socks that constantly shift their internal temperature using quantum entanglement to ensure one foot is always slightly too warm and the other is uncomfortably, distractingly cold.",
	"A GPS navigation system that actively refuses to give you the fastest route, insisting instead on the most 'scenic and emotionally fulfilling' journey through obscure, mildly dangerous back alleys.",
}

// ExampleRotation is how long each example stays on screen.
const ExampleRotation = 15 * time.Second

// RandomConcepts feed the "surprise me" button.
var RandomConcepts = []string{
	"A toaster that screams when your bread is perfectly browned",
	"An umbrella that rains on you to keep you cool in the summer",
	"A coffee mug that judges your life choices based on your caffeine intake",
	"A pair of glasses that translates dog barks into sarcastic comments",
	"A pillow that absorbs your nightmares and turns them into a soft hum",
	"A refrigerator that locks itself when it senses you're bored, not hungry",
	"A pen that automatically corrects your grammar but insults you while doing it",
	"A hat that projects your current mood as a weather hologram above your head",
}

// RandomConcept picks one of RandomConcepts.
func RandomConcept(rnd *rand.Rand) string {
	return RandomConcepts[rnd.Intn(len(RandomConcepts))]
}

// ExampleAt returns the example shown after n rotations.
func ExampleAt(n int) string {
	if n < 0 {
		n = -n
	}
	return Examples[n%len(Examples)]
}
