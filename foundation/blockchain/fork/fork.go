// Package fork identifies the protocol version a block is built under. The
// fork is chosen once per block from the signing time and the chain's
// activation schedule and then binds every schema used for that block.
package fork

import (
	"fmt"
	"strings"

	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
)

// Fork identifies a protocol version.
type Fork uint8

// Set of known forks, in activation order.
const (
	Boson Fork = iota
	Photon
)

// String implements the fmt.Stringer interface.
func (f Fork) String() string {
	switch f {
	case Boson:
		return "boson"
	case Photon:
		return "photon"
	}

	return fmt.Sprintf("fork(%d)", uint8(f))
}

// Known reports whether the fork is one this package can build blocks for.
func (f Fork) Known() bool {
	return f == Boson || f == Photon
}

// Check returns an unsupported fork fault for forks outside the known set.
func (f Fork) Check(stage string) error {
	if !f.Known() {
		return fault.Newf(fault.UnsupportedFork, stage, "fork", "unknown fork id %d", uint8(f))
	}
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (f Fork) MarshalText() ([]byte, error) {
	if err := f.Check("fork"); err != nil {
		return nil, err
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (f *Fork) UnmarshalText(data []byte) error {
	v, err := Parse(string(data))
	if err != nil {
		return err
	}

	*f = v
	return nil
}

// Parse converts a fork name into a fork.
func Parse(name string) (Fork, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "boson":
		return Boson, nil
	case "photon":
		return Photon, nil
	}

	return 0, fault.Newf(fault.UnsupportedFork, "fork", "fork", "unknown fork %q", name)
}

// =============================================================================

// Schedule provides the fork activation times for a chain.
type Schedule interface {
	PhotonTimestamp(chainID uint64) int64
}

// Select returns the fork active on the chain at the specified unix time.
// Photon is active from its activation time onward.
func Select(schedule Schedule, chainID uint64, timestamp int64) Fork {
	if timestamp < schedule.PhotonTimestamp(chainID) {
		return Boson
	}

	return Photon
}
