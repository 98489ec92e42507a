package link

import (
	"context"
	"io/ioutil"
	"net"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/hub"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/metrics"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/store"
	"github.com/daniil11ru/mavlink-bridge/libs/mavlink"
)

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		network string
		target  string
		wantErr bool
	}{
		{"udp listen", "udp://0.0.0.0:14550", "udp", "0.0.0.0:14550", false},
		{"udp dial", "udpout://10.0.0.5:14550", "udpout", "10.0.0.5:14550", false},
		{"tcp dial", "tcp://fc.local:5760", "tcp", "fc.local:5760", false},
		{"missing scheme", "0.0.0.0:14550", "", "", true},
		{"unsupported scheme", "serial:///dev/ttyUSB0", "", "", true},
		{"empty target", "udp://", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, target, err := splitAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.network, network)
				assert.Equal(t, tt.target, target)
			}
		})
	}
}

func TestNewRejectsBadAddress(t *testing.T) {
	_, err := New("serial:///dev/ttyACM0", 0, 0, 0, store.New(4), hub.New(4, metrics.New(nil)), nil, metrics.New(nil))
	assert.Error(t, err)
}

func TestLinkLifecycleOverTCP(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer ln.Close()

	st := store.New(16)
	h := hub.New(16, metrics.New(nil))
	l, err := New("tcp://"+ln.Addr().String(), 2*time.Second, 300*time.Millisecond, 500*time.Millisecond, st, h, nil, metrics.New(nil))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, Disconnected, l.State())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	conn, err := ln.Accept()
	if !assert.NoError(t, err) {
		return
	}

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	raw, err := mavlink.EncodeFrame(2, 0, 1, 1, &mavlink.GlobalPositionInt{Lat: 337490000, Lon: -843880000, RelativeAlt: 25000})
	assert.NoError(t, err)
	_, err = conn.Write(raw)
	assert.NoError(t, err)

	select {
	case s := <-sub.C:
		assert.Equal(t, uint64(1), s.Seq)
		assert.InDelta(t, 33.749, *s.Lat, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot was delivered")
	}
	assert.Equal(t, Connected, l.State())

	// Severing the connection degrades the link but keeps the snapshot.
	conn.Close()
	assert.Eventually(t, func() bool { return l.State() == Degraded }, 2*time.Second, 10*time.Millisecond)
	_, ok := st.Get()
	assert.True(t, ok)

	// The link reconnects on its own and merging continues where it left off.
	conn2, err := ln.Accept()
	if !assert.NoError(t, err) {
		return
	}
	defer conn2.Close()

	raw, err = mavlink.EncodeFrame(2, 1, 1, 1, &mavlink.Attitude{Roll: 0.1})
	assert.NoError(t, err)
	_, err = conn2.Write(raw)
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		s, ok := st.Get()
		return ok && s.Seq == 2 && s.Roll != nil && s.Lat != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return l.State() == Disconnected }, 2*time.Second, 10*time.Millisecond)
}

func TestLinkSkipsGarbageWithoutTouchingState(t *testing.T) {
	log.SetOutput(ioutil.Discard)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer ln.Close()

	st := store.New(16)
	h := hub.New(16, metrics.New(nil))
	l, err := New("tcp://"+ln.Addr().String(), 2*time.Second, 300*time.Millisecond, 500*time.Millisecond, st, h, nil, metrics.New(nil))
	if !assert.NoError(t, err) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	conn, err := ln.Accept()
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	good, err := mavlink.EncodeFrame(2, 0, 1, 1, &mavlink.Heartbeat{BaseMode: 0x81, CustomMode: 3})
	assert.NoError(t, err)
	corrupted, err := mavlink.EncodeFrame(2, 1, 1, 1, &mavlink.GlobalPositionInt{Lat: 1})
	assert.NoError(t, err)
	corrupted[len(corrupted)-1] ^= 0xff

	stream := append([]byte{0xde, 0xad, 0xbe, 0xef}, corrupted...)
	stream = append(stream, good...)
	_, err = conn.Write(stream)
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		s, ok := st.Get()
		return ok && s.Seq == 1 && s.Mode != nil && *s.Mode == "AUTO"
	}, 2*time.Second, 10*time.Millisecond)

	// The corrupted position frame never made it into the snapshot.
	s, _ := st.Get()
	assert.Nil(t, s.Lat)
}
