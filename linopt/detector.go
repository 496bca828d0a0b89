package linopt

import "github.com/alan-christopher/linopt/go/linopt/optics"

// A Detector is an output-face port that reacts to measured photon counts.
// During sampling runs the processor triggers every output detector once
// per accepted sample with the photon count observed on its mode.
type Detector interface {
	Port

	// Trigger feeds one measured photon count to the detector.
	Trigger(photons int)
}

// A CounterDetector counts the trigger events that saw at least one
// photon.
type CounterDetector struct {
	name  string
	count int
}

// NewCounterDetector returns a zeroed counter detector.
func NewCounterDetector(name string) *CounterDetector {
	return &CounterDetector{name: name}
}

// Name returns the detector's label.
func (d *CounterDetector) Name() string { return d.name }

// Modes returns 1.
func (d *CounterDetector) Modes() int { return 1 }

// SupportsLocation reports true only for the output face.
func (d *CounterDetector) SupportsLocation(loc Location) bool { return loc == LocationOutput }

// ClosesMode reports true: a detected mode cannot be composed onto.
func (d *CounterDetector) ClosesMode() bool { return true }

// Trigger counts the event if it carried photons.
func (d *CounterDetector) Trigger(photons int) {
	if photons > 0 {
		d.count++
	}
}

// Count returns the number of photon-carrying events seen so far.
func (d *CounterDetector) Count() int { return d.count }

// Copy returns an independent copy carrying the current count.
func (d *CounterDetector) Copy() Port {
	c := *d
	return &c
}

// A ConverterDetector converts measured photon counts into callbacks on
// connected circuit components, in connection order.
type ConverterDetector struct {
	name  string
	conns []converterConn
}

type converterConn struct {
	target optics.Component
	fn     func(photons int)
}

// NewConverterDetector returns a detector with no connections.
func NewConverterDetector(name string) *ConverterDetector {
	return &ConverterDetector{name: name}
}

// Name returns the detector's label.
func (d *ConverterDetector) Name() string { return d.name }

// Modes returns 1.
func (d *ConverterDetector) Modes() int { return 1 }

// SupportsLocation reports true only for the output face.
func (d *ConverterDetector) SupportsLocation(loc Location) bool { return loc == LocationOutput }

// ClosesMode reports true.
func (d *ConverterDetector) ClosesMode() bool { return true }

// ConnectTo registers fn to run for target on every trigger.
func (d *ConverterDetector) ConnectTo(target optics.Component, fn func(photons int)) {
	d.conns = append(d.conns, converterConn{target: target, fn: fn})
}

// IsConnectedTo reports whether target has a registered callback.
func (d *ConverterDetector) IsConnectedTo(target optics.Component) bool {
	for _, c := range d.conns {
		if c.target == target {
			return true
		}
	}
	return false
}

// Trigger runs every connected callback with the measured photon count.
func (d *ConverterDetector) Trigger(photons int) {
	for _, c := range d.conns {
		c.fn(photons)
	}
}

// Copy returns a copy sharing the connected targets and callbacks.
func (d *ConverterDetector) Copy() Port {
	c := &ConverterDetector{name: d.name}
	c.conns = append(c.conns, d.conns...)
	return c
}
