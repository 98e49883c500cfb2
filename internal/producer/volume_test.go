package producer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amixerStereo = `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 87
  Mono:
  Front Left: Playback 57 [66%] [-22.50dB] [on]
  Front Right: Playback 57 [66%] [-22.50dB] [on]
`

const amixerMuted = `Simple mixer control 'Master',0
  Capabilities: pvolume pvolume-joined pswitch pswitch-joined
  Playback channels: Mono
  Limits: Playback 0 - 31
  Mono: Playback 31 [100%] [0.00dB] [off]
`

const amixerNoSwitch = `Simple mixer control 'PCM',0
  Capabilities: pvolume
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 255
  Front Left: Playback 64 [25%] [-20.00dB]
  Front Right: Playback 64 [25%] [-20.00dB]
`

func TestParseAmixer(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Volume
	}{
		{"stereo on", amixerStereo, Volume{Level: 0.66}},
		{"mono muted", amixerMuted, Volume{Level: 1, Muted: true}},
		{"no switch", amixerNoSwitch, Volume{Level: 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseAmixer(tt.out)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Level, v.Level, 1e-9)
			assert.Equal(t, tt.want.Muted, v.Muted)
		})
	}
}

func TestParseAmixer_NoLevel(t *testing.T) {
	_, err := ParseAmixer("Simple mixer control 'Capture',0\n  Capabilities: cswitch\n")
	assert.Error(t, err)
}

func TestVolume_PassesCardAndChannel(t *testing.T) {
	var got []string
	p := NewVolume(time.Second, 1, "Speaker", func(_ context.Context, card int, channel string) ([]byte, error) {
		got = append(got, fmt.Sprintf("%d/%s", card, channel))
		return []byte(amixerMuted), nil
	})

	assert.Equal(t, Volume{Level: 1, Muted: true}, p.Initial())
	assert.Equal(t, []string{"1/Speaker"}, got)
}

func TestVolume_MissingAmixerIsAbsent(t *testing.T) {
	p := NewVolume(time.Second, 0, "Master", func(context.Context, int, string) ([]byte, error) {
		return nil, &exec.Error{Name: "amixer", Err: exec.ErrNotFound}
	})

	assert.Equal(t, Volume{}, p.Initial())
	_, err := p.Produce(context.Background())
	assert.ErrorIs(t, err, ErrAbsent)
}

func TestVolume_FailedRunIsTransient(t *testing.T) {
	fail := true
	p := NewVolume(time.Millisecond, 0, "Master", func(context.Context, int, string) ([]byte, error) {
		if fail {
			return nil, errors.New("exit status 1")
		}
		return []byte(amixerStereo), nil
	})
	assert.Equal(t, Volume{}, p.Initial())

	_, err := p.Produce(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAbsent)

	fail = false
	v, err := p.Produce(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.66, v.Level, 1e-9)
}

func TestRegistry_VolumeKindPerControl(t *testing.T) {
	assert.Equal(t, Kind("volume:0:Master"), VolumeKind(0, "Master"))
	assert.NotEqual(t, VolumeKind(0, "Master"), VolumeKind(1, "Master"))
}
