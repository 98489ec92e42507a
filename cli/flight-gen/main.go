package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniil11ru/mavlink-bridge/libs/mavlink"
)

/*
MAVLink flight generator.

Util emulates a flight controller: it dials the bridge and streams
HEARTBEAT, ATTITUDE, GLOBAL_POSITION_INT, SYS_STATUS and GPS_RAW_INT
frames for a vehicle drifting around the start point.

Usage:
  -server string
    	Bridge address in format <ip>:<port> (default "127.0.0.1:14550")
  -rate int
    	Bursts per second (default 2)
  -sysid int
    	System identifier of the emulated vehicle (default 1)
  -duration int
    	How long to stream in seconds, 0 means until interrupted
  -lat float
    	Start latitude
  -lon float
    	Start longitude

Example

```
./flight-gen -server 127.0.0.1:14550 -rate 4 -duration 60
```
*/

func main() {
	server := ""
	rate := 0
	sysid := 0
	duration := 0
	lat := 0.0
	lon := 0.0

	flag.StringVar(&server, "server", "127.0.0.1:14550", "Bridge address in format <ip>:<port>")
	flag.IntVar(&rate, "rate", 2, "Bursts per second")
	flag.IntVar(&sysid, "sysid", 1, "System identifier of the emulated vehicle")
	flag.IntVar(&duration, "duration", 0, "How long to stream in seconds, 0 means until interrupted")
	flag.Float64Var(&lat, "lat", 55.7520, "Start latitude")
	flag.Float64Var(&lon, "lon", 37.6175, "Start longitude")

	flag.Parse()

	if rate <= 0 {
		fmt.Println("Rate must be positive, see help (-h)")
		os.Exit(1)
	}
	if sysid <= 0 || sysid > 255 {
		fmt.Println("System identifier must be between 1 and 255, see help (-h)")
		os.Exit(1)
	}

	conn, err := net.Dial("udp", server)
	if err != nil {
		fmt.Println("Failed to connect: ", err)
		os.Exit(1)
	}
	defer conn.Close()

	alt := 0.0
	yaw := 0.0
	battery := 100.0

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var deadline <-chan time.Time
	if duration > 0 {
		deadline = time.After(time.Duration(duration) * time.Second)
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	start := time.Now()
	seq := uint8(0)
	fmt.Printf("Streaming telemetry to %s at %d bursts per second\n", server, rate)

	for {
		select {
		case <-stop:
			fmt.Println("Interrupted")
			return
		case <-deadline:
			fmt.Println("Flight finished")
			return
		case <-ticker.C:
		}

		lat += (rand.Float64() - 0.5) * 2e-4
		lon += (rand.Float64() - 0.5) * 2e-4
		alt += (rand.Float64() - 0.5) * 2
		if alt < 0 {
			alt = 0
		}
		if alt > 120 {
			alt = 120
		}
		yaw += (rand.Float64() - 0.5) * 0.1
		if yaw > math.Pi {
			yaw -= 2 * math.Pi
		}
		if yaw < -math.Pi {
			yaw += 2 * math.Pi
		}
		battery -= 0.01
		if battery < 0 {
			battery = 0
		}
		voltage := 10.5 + battery/100*2.1

		bootMs := uint32(time.Since(start).Milliseconds())
		messages := []mavlink.Message{
			&mavlink.Heartbeat{
				CustomMode:     3, // ArduCopter AUTO
				Type:           2, // quadrotor
				Autopilot:      3, // ArduPilot
				BaseMode:       mavlink.ModeFlagCustomModeEnabled | mavlink.ModeFlagSafetyArmed,
				SystemStatus:   4, // active
				MavlinkVersion: 3,
			},
			&mavlink.Attitude{
				TimeBootMs: bootMs,
				Roll:       float32((rand.Float64() - 0.5) * 0.2),
				Pitch:      float32((rand.Float64() - 0.5) * 0.2),
				Yaw:        float32(yaw),
			},
			&mavlink.GlobalPositionInt{
				TimeBootMs:  bootMs,
				Lat:         int32(lat * 1e7),
				Lon:         int32(lon * 1e7),
				Alt:         int32((alt + 150) * 1000),
				RelativeAlt: int32(alt * 1000),
				Hdg:         uint16(math.Mod(yaw*180/math.Pi+360, 360) * 100),
			},
			&mavlink.SysStatus{
				VoltageBattery:   uint16(voltage * 1000),
				CurrentBattery:   int16(120 + rand.Intn(40)),
				BatteryRemaining: int8(battery),
			},
			&mavlink.GpsRawInt{
				TimeUsec:          uint64(time.Now().UnixMicro()),
				Lat:               int32(lat * 1e7),
				Lon:               int32(lon * 1e7),
				Alt:               int32((alt + 150) * 1000),
				FixType:           3,
				SatellitesVisible: uint8(10 + rand.Intn(5)),
			},
		}

		for _, m := range messages {
			frame, err := mavlink.EncodeFrame(2, seq, uint8(sysid), 1, m)
			if err != nil {
				fmt.Println("Failed to encode frame: ", err)
				os.Exit(1)
			}
			if _, err = conn.Write(frame); err != nil {
				fmt.Println("Failed to send frame: ", err)
				os.Exit(1)
			}
			seq++
		}
	}
}
