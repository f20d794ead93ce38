// Package geometry resolves which net a shot targets and how far away it is.
package geometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/rinkshot/internal/domain/model"
)

// NetX is the distance in feet from center ice to either goal line. Nets sit
// on the goal lines regardless of the measured event x.
const NetX = 89.0

// FallbackTable picks the target net when the home team's defending side is
// unknown, using only the zone code and the sign of the shot's x.
type FallbackTable interface {
	Name() string
	TargetX(zone model.Zone, x float64) float64
}

// nearNet treats an offensive-zone shot as aimed at the net on its own half
// and neutral/defensive-zone shots at the far net.
type nearNet struct{}

func (nearNet) Name() string { return "near" }

func (nearNet) TargetX(zone model.Zone, x float64) float64 {
	switch zone {
	case model.ZoneOffensive:
		if x < 0 {
			return -NetX
		}
		return NetX
	case model.ZoneNeutral, model.ZoneDefensive:
		if x < 0 {
			return NetX
		}
		return -NetX
	default:
		if x > 0 {
			return -NetX
		}
		return NetX
	}
}

// farNet always aims at the net on the opposite half from the shot.
type farNet struct{}

func (farNet) Name() string { return "far" }

func (farNet) TargetX(_ model.Zone, x float64) float64 {
	if x < 0 {
		return NetX
	}
	return -NetX
}

// Built-in fallback tables.
var (
	NearNet FallbackTable = nearNet{}
	FarNet  FallbackTable = farNet{}
)

// ParseFallback returns the table registered under name ("near" or "far").
func ParseFallback(name string) (FallbackTable, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "near":
		return NearNet, nil
	case "far":
		return FarNet, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFallback, name)
	}
}

// TargetGoalX returns the x of the net the shooting team attacks.
// A nil table falls back to NearNet.
func TargetGoalX(x float64, shootingTeamID, homeTeamID int64, side model.Side, zone model.Zone, table FallbackTable) float64 {
	if side.Known() {
		home := shootingTeamID == homeTeamID
		if (home && side == model.SideLeft) || (!home && side == model.SideRight) {
			return NetX
		}
		return -NetX
	}
	if table == nil {
		table = NearNet
	}
	if zone == "" {
		zone = model.ZoneOffensive
	}
	return table.TargetX(zone, x)
}

// ShotDistance is the Euclidean distance from (x, y) to the targeted net.
func ShotDistance(x, y float64, shootingTeamID, homeTeamID int64, side model.Side, zone model.Zone, table FallbackTable) float64 {
	tx := TargetGoalX(x, shootingTeamID, homeTeamID, side, zone, table)
	return math.Hypot(x-tx, y)
}
