package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/distatus/battery"
)

// BatteryState is the charging state of the first battery.
type BatteryState int

const (
	BatteryUnknown BatteryState = iota
	BatteryCharging
	BatteryDischarging
	BatteryEmpty
	BatteryFull
)

func (s BatteryState) String() string {
	switch s {
	case BatteryCharging:
		return "charging"
	case BatteryDischarging:
		return "discharging"
	case BatteryEmpty:
		return "empty"
	case BatteryFull:
		return "full"
	default:
		return "unknown"
	}
}

// Battery holds the charge fraction in [0, 1] and state of the first battery.
type Battery struct {
	Charge float64
	State  BatteryState
}

// BatteriesFunc lists the host's batteries.
type BatteriesFunc func() ([]*battery.Battery, error)

// BatteryProducer samples the first battery. A host without batteries is
// detected once and reported as BatteryUnknown from then on.
type BatteryProducer struct {
	interval
	list   BatteriesFunc
	absent bool
}

// NewBattery creates a battery producer. A nil list uses battery.GetAll.
func NewBattery(every time.Duration, list BatteriesFunc) *BatteryProducer {
	if list == nil {
		list = battery.GetAll
	}
	p := &BatteryProducer{interval: interval{every}, list: list}
	bats, err := list()
	p.absent = len(bats) == 0 && (err == nil || isNotFound(err))
	return p
}

func (p *BatteryProducer) Name() string { return "battery" }

func (p *BatteryProducer) Initial() Battery {
	if p.absent {
		return Battery{State: BatteryUnknown}
	}
	b, err := p.sample()
	if err != nil {
		return Battery{State: BatteryUnknown}
	}
	return b
}

func (p *BatteryProducer) Produce(ctx context.Context) (Battery, error) {
	if p.absent {
		return Battery{State: BatteryUnknown}, fmt.Errorf("battery: %w", ErrAbsent)
	}
	if err := p.wait(ctx); err != nil {
		return Battery{}, err
	}
	return p.sample()
}

func (p *BatteryProducer) sample() (Battery, error) {
	bats, err := p.list()
	if len(bats) == 0 || bats[0] == nil {
		if err == nil {
			err = fmt.Errorf("no battery reported")
		}
		return Battery{}, fmt.Errorf("read battery: %w", err)
	}
	bat := bats[0]

	b := Battery{State: mapState(bat.State.Raw)}
	if bat.Full > 0 {
		b.Charge = clamp01(bat.Current / bat.Full)
	}
	return b, nil
}

func mapState(s battery.AgnosticState) BatteryState {
	switch s {
	case battery.Charging:
		return BatteryCharging
	case battery.Discharging:
		return BatteryDischarging
	case battery.Empty:
		return BatteryEmpty
	case battery.Full:
		return BatteryFull
	default:
		return BatteryUnknown
	}
}

// isNotFound reports the "no power supply directory" flavour of failure,
// which means there is nothing to retry.
func isNotFound(err error) bool {
	_, ok := err.(battery.ErrFatal)
	return ok
}
