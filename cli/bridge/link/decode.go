package link

import (
	"math"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
	"github.com/daniil11ru/mavlink-bridge/libs/mavlink"
)

// applyMessage merges one decoded message into the previous snapshot and
// reports whether it carried any state the bridge tracks. Fields the
// message does not mention keep their previous values; sentinel values
// meaning "not measured" leave the field untouched as well.
func applyMessage(m mavlink.Message, prev telemetry.Snapshot) (telemetry.Snapshot, bool) {
	next := prev

	switch msg := m.(type) {
	case *mavlink.GlobalPositionInt:
		next.Lat = telemetry.Float(float64(msg.Lat) / 1e7)
		next.Lon = telemetry.Float(float64(msg.Lon) / 1e7)
		next.Alt = telemetry.Float(float64(msg.RelativeAlt) / 1000.0)
	case *mavlink.Attitude:
		next.Roll = telemetry.Float(degrees(msg.Roll))
		next.Pitch = telemetry.Float(degrees(msg.Pitch))
		next.Yaw = telemetry.Float(degrees(msg.Yaw))
	case *mavlink.BatteryStatus:
		if msg.BatteryRemaining >= 0 {
			next.Battery = telemetry.Float(float64(msg.BatteryRemaining))
		}
	case *mavlink.SysStatus:
		if msg.VoltageBattery != 0xffff {
			next.Voltage = telemetry.Float(float64(msg.VoltageBattery) / 1000.0)
		}
		if msg.CurrentBattery >= 0 {
			next.Current = telemetry.Float(float64(msg.CurrentBattery) / 100.0)
		}
		if msg.BatteryRemaining >= 0 {
			next.Battery = telemetry.Float(float64(msg.BatteryRemaining))
		}
	case *mavlink.GpsRawInt:
		next.FixType = telemetry.Int(int(msg.FixType))
		if msg.SatellitesVisible != 255 {
			next.Satellites = telemetry.Int(int(msg.SatellitesVisible))
		}
	case *mavlink.Heartbeat:
		next.Armed = telemetry.Bool(msg.BaseMode&mavlink.ModeFlagSafetyArmed != 0)
		next.Mode = telemetry.String(flightModeName(msg.CustomMode))
	default:
		return prev, false
	}
	return next, true
}

func degrees(rad float32) float64 {
	return float64(rad) * 180 / math.Pi
}
