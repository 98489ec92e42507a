package telemetry

import (
	"encoding/json"
	"time"
)

// Snapshot is the latest known vehicle state assembled from the link.
// Value fields are pointers so that anything the vehicle has not reported
// yet stays an explicit JSON null instead of masquerading as zero.
type Snapshot struct {
	Lat        *float64  `json:"lat"`
	Lon        *float64  `json:"lon"`
	Alt        *float64  `json:"alt"` // meters above home
	Roll       *float64  `json:"roll"`
	Pitch      *float64  `json:"pitch"`
	Yaw        *float64  `json:"yaw"`
	Battery    *float64  `json:"battery"`
	Voltage    *float64  `json:"voltage"`
	Current    *float64  `json:"current"`
	FixType    *int      `json:"fix_type"`
	Satellites *int      `json:"satellites"`
	Armed      *bool     `json:"armed"`
	Mode       *string   `json:"mode"`
	Timestamp  time.Time `json:"ts"`
	Seq        uint64    `json:"seq"`
}

// ToBytes serializes the snapshot for export sinks and the stream API.
func (s *Snapshot) ToBytes() ([]byte, error) {
	return json.Marshal(s)
}

// Clone returns a copy that can be updated without touching s. Published
// snapshots are never mutated, so sharing the pointed-to values is safe.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	return &c
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
