package legalref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestECLIs(t *testing.T) {
	t.Parallel()

	text := "Zie ECLI:NL:HR:2019:1278 en ECLI:NL:GHAMS:2020:55; vgl. nogmaals ECLI:NL:HR:2019:1278."
	got := ECLIs(text)
	assert.Equal(t, []string{"ECLI:NL:HR:2019:1278", "ECLI:NL:GHAMS:2020:55"}, got)

	assert.Nil(t, ECLIs("geen verwijzingen hier"))
}

func TestArticles(t *testing.T) {
	t.Parallel()

	text := "Op grond van artikel 6:162 BW en art. 3 lid 2 Awb. Artikel 6:162 BW nogmaals."
	got := Articles(text)
	assert.Equal(t, []string{"artikel 6:162 BW", "art. 3 lid 2 Awb"}, got)
}

func TestCount(t *testing.T) {
	t.Parallel()

	text := "artikel 6:162 BW; ECLI:NL:HR:2019:1278"
	assert.Equal(t, 2, Count(text))
	assert.Equal(t, 0, Count("niets"))
}
