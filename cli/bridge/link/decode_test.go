package link

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
	"github.com/daniil11ru/mavlink-bridge/libs/mavlink"
)

func TestApplyMessageMergesPartialUpdates(t *testing.T) {
	var cur telemetry.Snapshot

	next, changed := applyMessage(&mavlink.GlobalPositionInt{Lat: 337490000, Lon: -843880000, RelativeAlt: 25000}, cur)
	assert.True(t, changed)
	assert.InDelta(t, 33.749, *next.Lat, 1e-9)
	assert.InDelta(t, -84.388, *next.Lon, 1e-9)
	assert.InDelta(t, 25.0, *next.Alt, 1e-9)
	assert.Nil(t, next.Roll)
	assert.Nil(t, next.Battery)
	cur = next

	next, changed = applyMessage(&mavlink.Attitude{Roll: 0.1, Pitch: -0.05, Yaw: 1.5}, cur)
	assert.True(t, changed)
	// attitude arrives in radians and is reported in degrees
	assert.InDelta(t, 5.7295779513, *next.Roll, 1e-6)
	assert.InDelta(t, -2.8647889756, *next.Pitch, 1e-6)
	assert.InDelta(t, 85.9436692696, *next.Yaw, 1e-6)
	// the position from the earlier message is retained
	assert.InDelta(t, 33.749, *next.Lat, 1e-9)
	assert.InDelta(t, 25.0, *next.Alt, 1e-9)
	cur = next

	next, changed = applyMessage(&mavlink.BatteryStatus{BatteryRemaining: 87}, cur)
	assert.True(t, changed)
	assert.Equal(t, 87.0, *next.Battery)
	assert.InDelta(t, 33.749, *next.Lat, 1e-9)
	assert.InDelta(t, 5.7295779513, *next.Roll, 1e-6)
}

func TestApplyMessageSentinels(t *testing.T) {
	tests := []struct {
		name  string
		msg   mavlink.Message
		check func(t *testing.T, s telemetry.Snapshot)
	}{
		{
			name: "battery percent unknown stays null",
			msg:  &mavlink.BatteryStatus{BatteryRemaining: -1},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.Nil(t, s.Battery)
			},
		},
		{
			name: "sys_status not measured values stay null",
			msg:  &mavlink.SysStatus{VoltageBattery: 0xffff, CurrentBattery: -1, BatteryRemaining: -1},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.Nil(t, s.Voltage)
				assert.Nil(t, s.Current)
				assert.Nil(t, s.Battery)
			},
		},
		{
			name: "sys_status known values are scaled",
			msg:  &mavlink.SysStatus{VoltageBattery: 12600, CurrentBattery: 1540, BatteryRemaining: 87},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.InDelta(t, 12.6, *s.Voltage, 1e-9)
				assert.InDelta(t, 15.4, *s.Current, 1e-9)
				assert.Equal(t, 87.0, *s.Battery)
			},
		},
		{
			name: "satellite count unknown stays null",
			msg:  &mavlink.GpsRawInt{FixType: 3, SatellitesVisible: 255},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.Equal(t, 3, *s.FixType)
				assert.Nil(t, s.Satellites)
			},
		},
		{
			name: "satellite count known",
			msg:  &mavlink.GpsRawInt{FixType: 4, SatellitesVisible: 12},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.Equal(t, 4, *s.FixType)
				assert.Equal(t, 12, *s.Satellites)
			},
		},
		{
			name: "heartbeat armed with known mode",
			msg:  &mavlink.Heartbeat{BaseMode: 0x81, CustomMode: 5},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.True(t, *s.Armed)
				assert.Equal(t, "LOITER", *s.Mode)
			},
		},
		{
			name: "heartbeat disarmed with unnamed mode",
			msg:  &mavlink.Heartbeat{BaseMode: 0x01, CustomMode: 99},
			check: func(t *testing.T, s telemetry.Snapshot) {
				assert.False(t, *s.Armed)
				assert.Equal(t, "MODE(99)", *s.Mode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, changed := applyMessage(tt.msg, telemetry.Snapshot{})
			assert.True(t, changed)
			tt.check(t, next)
		})
	}
}

// fakeMessage stands in for a decoded message type the bridge does not track.
type fakeMessage struct{}

func (fakeMessage) Decode([]byte) error     { return nil }
func (fakeMessage) Encode() ([]byte, error) { return nil, nil }
func (fakeMessage) Length() uint8           { return 0 }
func (fakeMessage) ID() uint32              { return 4242 }

func TestApplyMessageUntrackedMessage(t *testing.T) {
	cur := telemetry.Snapshot{Lat: telemetry.Float(1), Seq: 9}

	next, changed := applyMessage(fakeMessage{}, cur)
	assert.False(t, changed)
	assert.Equal(t, cur, next)
}

func TestFlightModeName(t *testing.T) {
	assert.Equal(t, "STABILIZE", flightModeName(0))
	assert.Equal(t, "RTL", flightModeName(6))
	assert.Equal(t, "MODE(42)", flightModeName(42))
}
