package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// blipper plays a short tone after each commit. It stays silent when the
// speaker could not be opened.
type blipper struct {
	ok bool
}

func newBlipper() (*blipper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &blipper{}, err
	}
	return &blipper{ok: true}, nil
}

// commit plays a high tone when props were placed and a low one otherwise.
func (b *blipper) commit(placed int) {
	if b == nil || !b.ok {
		return
	}
	freq := 880.0
	if placed == 0 {
		freq = 330
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(60*time.Millisecond), sine))
}

func (b *blipper) close() {
	if b != nil && b.ok {
		speaker.Close()
	}
}
