package oracle

import (
	"math/rand"
	"sync"

	"oracle/internal/domain"
)

// FallbackCatalog holds the pre-written, pre-approved response pool for each
// persona. It is the guarantee that the system can always answer: whenever the
// external generator is unavailable or its output is rejected, a response is
// drawn uniformly at random from here.
type FallbackCatalog struct {
	pools map[domain.Persona][]string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallbackCatalog builds the catalog from the built-in pools and verifies
// that every configured persona has at least one response. An empty pool means
// the system cannot honor its always-answer contract, so it fails construction
// rather than surfacing at request time.
func NewFallbackCatalog(seed int64) (*FallbackCatalog, error) {
	pools := map[domain.Persona][]string{
		domain.PersonaLight: lightResponses,
		domain.PersonaDark:  darkResponses,
	}
	for _, p := range domain.Personas() {
		if len(pools[p]) == 0 {
			return nil, domain.ErrEmptyFallbackPool
		}
	}
	return &FallbackCatalog{
		pools: pools,
		rnd:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Pick draws one response for the persona, uniformly at random.
func (c *FallbackCatalog) Pick(persona domain.Persona) (string, error) {
	pool, ok := c.pools[persona]
	if !ok || len(pool) == 0 {
		return "", domain.ErrUnknownPersona
	}
	c.mu.Lock()
	i := c.rnd.Intn(len(pool))
	c.mu.Unlock()
	return pool[i], nil
}

// Pool returns the configured responses for a persona. Read-only; used by
// startup validation.
func (c *FallbackCatalog) Pool(persona domain.Persona) []string {
	return c.pools[persona]
}

var lightResponses = []string{
	"I see golden light in your future, let it guide you toward joy",
	"The morning star reveals that hope approaches, have faith in your heart",
	"The light within you will shine brighter, prepare to welcome grace",
	"A bridge of light is being built for you, cross it with courage and faith",
	"I see wings of light protecting you in your journey, trust in divine protection",
	"A golden door is opening before you, step through with hope and gratitude",
	"A golden thread weaves through your destiny, follow it with trust and wonder",
	"I see golden rain falling on your garden, let abundance grow in every corner",
	"Heaven's gate opens wider with each kind act, step through with generosity",
	"The sail of your dreams catches winds of opportunity, navigate toward your goals",
	"Butterflies carry wishes on gossamer wings to the divine, release your desires",
	"Your guardian's wings cast shadows of protection, rest in their shelter",
	"Starlight weaves silver threads through your dreams, follow them to manifest reality",
	"Moonbeams paint pathways across your night sky, walk them toward your destiny",
	"Candlelight flickers with messages of hope, interpret their dancing shadows",
	"Angels collect your tears in crystal vials, transforming sorrow into wisdom",
	"The golden fleece awaits your heroic journey, embark on your personal quest",
	"White horses carry your prayers across celestial plains, mount them with faith",
	"Doves deliver messages between earth and heaven, send your requests upward",
	"Sacred springs bubble with waters of renewal, bathe in their restorative power",
}

var darkResponses = []string{
	"From night's depths emerges that mystery will unveil itself, listen to your intuition",
	"Shadow whispers speak of secrets for you, prepare to discover the unexpected",
	"In the cup of shadow your future is mixed, drink with awareness",
	"Your soul's deep roots are strengthening, nurture the inner growth",
	"From midnight's embrace comes the gift of solitude, learn what silence teaches",
	"Dancing shadows show you must look beyond appearance, find the hidden truth",
	"The growing moon reveals your transformation has begun, embrace what you will become",
	"The full moon reveals your strength is at its peak, embrace your power",
	"The new moon reveals a new cycle begins, embrace the unknown",
	"From time's shadows emerges that truth will reveal itself, listen to your instinct",
	"In the forest of your dreams, wisdom grows for the patient wanderer",
	"The cauldron of transformation bubbles with your becoming, stir it with intention",
	"Dusk contemplations prepare you for night's teachings, welcome the darkness",
	"Dawn reflections merge shadow and light within you, embrace your complexity",
	"The shadow realm mirrors show inverted truths, read them backwards",
	"Your sleeping phoenix prepares for rebirth through flames, surrender to transformation",
}
