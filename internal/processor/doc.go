// Package processor runs wurdle headless and launches the GUI.
//
// In CLI mode each forged word is saved into its own card directory below
// the output directory, named after internal.GenerateCardID:
//
//	concept.txt   the concept as typed
//	word.json     word, pronunciation, definition and discovery
//	sketch.png    the blueprint sketch
//	card.png      the share card (unless --no-card)
//	share.txt     share text and, with an image host key, the hosted URL
//
// Batch runs skip concepts that already have a card directory.
// GenerateAnkiFile turns all card directories into wurdle.apkg next to the
// output directory.
package processor
