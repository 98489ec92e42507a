package link

import (
	"fmt"
	"net"
	"sync"
)

// packetStream adapts a listening packet socket to the stream interface
// the frame decoder reads from. The peer is learned from the first
// datagram, which is how a ground station is normally discovered on a
// listening UDP endpoint.
type packetStream struct {
	net.PacketConn

	mu   sync.Mutex
	peer net.Addr
}

func newPacketStream(pc net.PacketConn) *packetStream {
	return &packetStream{PacketConn: pc}
}

func (p *packetStream) Read(b []byte) (int, error) {
	n, addr, err := p.PacketConn.ReadFrom(b)
	if addr != nil {
		p.mu.Lock()
		p.peer = addr
		p.mu.Unlock()
	}
	return n, err
}

func (p *packetStream) Write(b []byte) (int, error) {
	p.mu.Lock()
	peer := p.peer
	p.mu.Unlock()
	if peer == nil {
		return 0, fmt.Errorf("no peer seen yet on listening udp socket")
	}
	return p.PacketConn.WriteTo(b, peer)
}

func (p *packetStream) RemoteAddr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peer
}
