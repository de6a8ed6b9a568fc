package practicegen

import (
	"math/rand/v2"
	"sync"

	"github.com/yungbote/examgenius-backend/internal/domain/catalog"
)

// Shuffler permutes a question's options uniformly. It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewShuffler(rng *rand.Rand) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shuffler{rng: rng}
}

// Shuffle returns the options in a random order relabelled A..D, and the letter now holding the correct text.
func (s *Shuffler) Shuffle(opts catalog.Options, correct string) (catalog.Options, string) {
	perm := [4]int{0, 1, 2, 3}
	s.mu.Lock()
	for i := len(perm) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	s.mu.Unlock()

	texts := opts.Slice()
	ci := catalog.LetterIndex(correct)
	var out [4]string
	newCorrect := correct
	for pos, from := range perm {
		out[pos] = texts[from]
		if from == ci {
			newCorrect = catalog.Letters[pos]
		}
	}
	return catalog.OptionsFrom(out), newCorrect
}
