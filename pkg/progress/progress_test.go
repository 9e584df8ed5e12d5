package progress

import (
	"testing"
)

func TestNopObserver(t *testing.T) {
	var obs Observer = Nop{}

	// Must be safe to call in any order
	obs.Advance()
	obs.Start("label", 10)
	obs.Advance()
	obs.Finish()
}

func TestBarObserver(t *testing.T) {
	bar := NewBar()

	bar.Start("retrieving currencies", 3)
	for i := 0; i < 3; i++ {
		bar.Advance()
	}
	bar.Finish()
}

func TestBarObserver_UnknownTotal(t *testing.T) {
	bar := NewBar()

	bar.Start("retrieving currencies", -1)
	bar.Advance()
	bar.Finish()
}

func TestBarObserver_AdvanceBeforeStart(t *testing.T) {
	bar := NewBar()

	// Must not panic when events arrive before Start
	bar.Advance()
	bar.Finish()
}
