package producer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Volume holds the playback level in [0, 1] of one mixer channel.
type Volume struct {
	Level float64
	Muted bool
}

// MixerFunc returns the output of `amixer -c card sget channel`.
type MixerFunc func(ctx context.Context, card int, channel string) ([]byte, error)

// amixer prints one line per playback channel:
//
//	Front Left: Playback 42352 [65%] [-10.00dB] [on]
var (
	playbackLevel  = regexp.MustCompile(`Playback.*\[(\d+)%\]`)
	playbackSwitch = regexp.MustCompile(`Playback.*\[(on|off)\]\s*$`)
)

// ParseAmixer reads the first playback channel's level and switch state.
// Controls without a switch are never muted.
func ParseAmixer(out string) (Volume, error) {
	m := playbackLevel.FindStringSubmatch(out)
	if m == nil {
		return Volume{}, fmt.Errorf("no playback level in amixer output")
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return Volume{}, fmt.Errorf("parse playback level %q: %w", m[1], err)
	}
	v := Volume{Level: float64(pct) / 100}
	if v.Level > 1 {
		v.Level = 1
	}
	for _, line := range strings.Split(out, "\n") {
		if s := playbackSwitch.FindStringSubmatch(line); s != nil {
			v.Muted = s[1] == "off"
			break
		}
	}
	return v, nil
}

// VolumeProducer polls one ALSA mixer control through amixer. A host without
// amixer is detected once and reported as absent.
type VolumeProducer struct {
	interval
	card    int
	channel string
	mixer   MixerFunc
	initial Volume
	absent  bool
}

// NewVolume creates a volume producer for channel on card. A nil mixer runs
// amixer from PATH.
func NewVolume(every time.Duration, card int, channel string, mixer MixerFunc) *VolumeProducer {
	if mixer == nil {
		mixer = runAmixer
	}
	p := &VolumeProducer{interval: interval{every}, card: card, channel: channel, mixer: mixer}
	v, err := p.sample(context.Background())
	switch {
	case errors.Is(err, exec.ErrNotFound):
		p.absent = true
	case err == nil:
		p.initial = v
	}
	return p
}

func (p *VolumeProducer) Name() string { return "volume" }

func (p *VolumeProducer) Initial() Volume { return p.initial }

func (p *VolumeProducer) Produce(ctx context.Context) (Volume, error) {
	if p.absent {
		return Volume{}, fmt.Errorf("amixer: %w", ErrAbsent)
	}
	if err := p.wait(ctx); err != nil {
		return Volume{}, err
	}
	return p.sample(ctx)
}

func (p *VolumeProducer) sample(ctx context.Context) (Volume, error) {
	out, err := p.mixer(ctx, p.card, p.channel)
	if err != nil {
		return Volume{}, fmt.Errorf("read mixer %d/%s: %w", p.card, p.channel, err)
	}
	return ParseAmixer(string(out))
}

func runAmixer(ctx context.Context, card int, channel string) ([]byte, error) {
	return exec.CommandContext(ctx, "amixer", "-c", strconv.Itoa(card), "sget", channel).Output()
}
