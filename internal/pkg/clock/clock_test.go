package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, at, Fixed{T: at}.Now())
}

func TestToday(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	at := time.Date(2025, 3, 14, 23, 59, 59, 0, jakarta)

	got := Today(Fixed{T: at})

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, jakarta), got)
	assert.Equal(t, "2025-03-14", got.Format(time.DateOnly))
}

func TestSystem_UsesLocation(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	assert.Equal(t, loc, NewSystem(loc).Now().Location())
	assert.Equal(t, time.Local, NewSystem(nil).Location)
}
