package identity

import (
	"fmt"
	"math/rand"
)

// Pseudonym is the anonymous handle standing in for a user's real
// identity in every public posting.
type Pseudonym struct {
	Handle   string
	Creature string
	Plant    string
	Cohort   string
}

var creatureEmoji = []string{"🐼", "🦊", "🐸", "🦉", "🐢", "🐙", "🦝", "🐧", "🦔", "🐨"}

var plantEmoji = []string{"🌱", "🌸", "🍁", "🌵", "🌻", "🍀", "🌿", "🌺", "🍄", "🎋"}

// GeneratePseudonym draws two uppercase letters, a number in [1,99] and
// one emoji from each of the creature and plant sets. Handles are not
// guaranteed unique: collisions are accepted, since the handle provides
// anonymity, not identity.
func GeneratePseudonym(rng *rand.Rand) Pseudonym {
	letters := [2]byte{
		byte('A' + rng.Intn(26)),
		byte('A' + rng.Intn(26)),
	}
	number := rng.Intn(99) + 1
	creature := creatureEmoji[rng.Intn(len(creatureEmoji))]
	plant := plantEmoji[rng.Intn(len(plantEmoji))]

	return Pseudonym{
		Handle:   fmt.Sprintf("%c%c-%d %s%s", letters[0], letters[1], number, creature, plant),
		Creature: creature,
		Plant:    plant,
	}
}

// CohortLabel derives the optional cohort tag shown next to a handle
// from the user's target language.
func CohortLabel(targetLanguage string) string {
	switch targetLanguage {
	case "en":
		return "english circle"
	case "ja":
		return "japanese circle"
	default:
		return ""
	}
}
