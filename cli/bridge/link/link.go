package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/hub"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/metrics"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/store"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
	"github.com/daniil11ru/mavlink-bridge/libs/mavlink"
)

// Exporter receives every produced snapshot for side-channel publishing.
type Exporter interface {
	Publish(interface{ ToBytes() ([]byte, error) }) error
}

// Link maintains one persistent connection to the flight controller and
// turns its message stream into snapshots. Malformed frames are counted
// and discarded without touching the stored state.
type Link struct {
	address string
	network string
	target  string
	ttl     time.Duration

	store    *store.Store
	hub      *hub.Hub
	exporter Exporter
	m        *metrics.Metrics

	retryMin time.Duration
	retryMax time.Duration

	state int32
	seq   uint64
	cur   telemetry.Snapshot // owned by the Run goroutine
}

func New(address string, ttl, retryMin, retryMax time.Duration, st *store.Store, h *hub.Hub, exp Exporter, m *metrics.Metrics) (*Link, error) {
	network, target, err := splitAddress(address)
	if err != nil {
		return nil, err
	}
	return &Link{
		address:  address,
		network:  network,
		target:   target,
		ttl:      ttl,
		store:    st,
		hub:      h,
		exporter: exp,
		m:        m,
		retryMin: retryMin,
		retryMax: retryMax,
	}, nil
}

// splitAddress understands udp:// (listen), udpout:// (dial) and
// tcp:// (dial).
func splitAddress(address string) (network, target string, err error) {
	parts := strings.SplitN(address, "://", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("link address %q must look like scheme://host:port", address)
	}
	switch parts[0] {
	case "udp", "udpout", "tcp":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("unsupported link scheme %q", parts[0])
}

// State returns the current connection state.
func (l *Link) State() State {
	return State(atomic.LoadInt32(&l.state))
}

func (l *Link) setState(s State) {
	prev := State(atomic.SwapInt32(&l.state, int32(s)))
	if prev == s {
		return
	}
	l.m.LinkState.Set(float64(s))
	log.WithFields(log.Fields{"from": prev.String(), "to": s.String()}).Info("Link state changed")
}

// lossState is what a lost connection falls back to: Degraded when a
// last-known-good snapshot exists, Disconnected otherwise.
func (l *Link) lossState() State {
	if _, ok := l.store.Get(); ok {
		return Degraded
	}
	return Disconnected
}

// Run connects, reads and reconnects until ctx is cancelled. Link trouble
// never terminates the process.
func (l *Link) Run(ctx context.Context) {
	retry := newBackoff(l.retryMin, l.retryMax)
	for {
		l.setState(Connecting)
		conn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.setState(Disconnected)
				return
			}
			l.setState(l.lossState())
			l.m.LinkReconnects.Inc()
			wait := retry.Next()
			log.WithField("err", err).Warnf("Link connect to %s failed, retrying in %s", l.address, wait)
			select {
			case <-ctx.Done():
				l.setState(Disconnected)
				return
			case <-time.After(wait):
			}
			continue
		}

		log.Infof("Link open on %s", l.address)
		err = l.readLoop(ctx, conn, retry)
		_ = conn.Close()
		if ctx.Err() != nil {
			l.setState(Disconnected)
			return
		}

		l.setState(l.lossState())
		l.m.LinkReconnects.Inc()
		wait := retry.Next()
		log.WithField("err", err).Warnf("Link lost, reconnecting in %s", wait)
		select {
		case <-ctx.Done():
			l.setState(Disconnected)
			return
		case <-time.After(wait):
		}
	}
}

func (l *Link) connect(ctx context.Context) (net.Conn, error) {
	switch l.network {
	case "udp":
		pc, err := net.ListenPacket("udp", l.target)
		if err != nil {
			return nil, err
		}
		return newPacketStream(pc), nil
	case "udpout":
		var d net.Dialer
		return d.DialContext(ctx, "udp", l.target)
	default:
		var d net.Dialer
		return d.DialContext(ctx, "tcp", l.target)
	}
}

func (l *Link) readLoop(ctx context.Context, conn net.Conn, retry *backoff) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	dec := mavlink.NewDecoder(conn)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.ttl > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(l.ttl))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		frame, err := dec.Next()
		if err != nil {
			switch {
			case errors.Is(err, mavlink.ErrChecksum):
				l.m.FrameErrors.Inc()
				log.WithField("err", err).Debug("Dropped frame with bad checksum")
				continue
			case errors.Is(err, mavlink.ErrUnknownMessage):
				log.WithField("err", err).Debug("Skipped unknown message")
				continue
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return fmt.Errorf("no data received for %s", l.ttl)
			}
			return err
		}

		l.m.FramesTotal.Inc()
		retry.Reset()
		l.setState(Connected)

		next, changed := applyMessage(frame.Message, l.cur)
		if !changed {
			continue
		}

		l.seq++
		next.Seq = l.seq
		next.Timestamp = time.Now().UTC()
		l.cur = next

		snap := next
		l.store.Replace(&snap)
		l.hub.Publish(&snap)
		l.m.SnapshotsTotal.Inc()

		if l.exporter != nil {
			if err := l.exporter.Publish(&snap); err != nil {
				log.WithField("err", err).Debug("Snapshot was not queued for export")
			}
		}
	}
}
