package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"duskdag.dev/node/accountstate"
	"duskdag.dev/node/config"
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/packet"
	"duskdag.dev/node/peer"
	"duskdag.dev/node/ping"
	"duskdag.dev/node/protocolrules"
)

type multiStringFlag []string

func (m *multiStringFlag) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiStringFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := config.DefaultConfig()
	var peerFlags multiStringFlag

	cfg := defaults
	fs := flag.NewFlagSet("duskdagd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	peerCSV := fs.String("peers", "", "bootstrap peers, comma-separated host:port")
	fs.Var(&peerFlags, "peer", "single bootstrap peer host:port (repeatable)")
	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name (devnet/testnet/mainnet)")
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory")
	fs.StringVar(&cfg.BindAddr, "bind", defaults.BindAddr, "bind address host:port")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.IntVar(&cfg.MaxPeers, "max-peers", defaults.MaxPeers, "max connected peers")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Peers = config.NormalizePeers(append([]string{*peerCSV}, peerFlags...)...)
	if err := config.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	logger := newLogger(stdout, cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Error("datadir create failed", "err", err)
		return 2
	}

	storage, err := accountstate.OpenBoltStorage(cfg.DataDir)
	if err != nil {
		logger.Error("storage open failed", "err", err)
		return 2
	}
	defer func() { _ = storage.Close() }()

	knownPeers := peer.NewPeerSet()
	for _, addr := range cfg.Peers {
		ap, err := netip.ParseAddrPort(addr)
		if err != nil {
			logger.Warn("skipping unparseable bootstrap peer", "addr", addr, "err", err)
			continue
		}
		knownPeers.Insert(ap, peer.DirectionOut)
	}

	if err := printConfig(stdout, cfg); err != nil {
		logger.Error("config encode failed", "err", err)
		return 1
	}
	logger.Info("node configured", "network", cfg.Network, "peers", len(cfg.Peers), "max_peers", cfg.MaxPeers)

	if *dryRun {
		return 0
	}

	ln, err := net.Listen("tcp", cfg.BindAddr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.BindAddr, "err", err)
		return 2
	}
	defer func() { _ = ln.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := newServer(cfg, knownPeers, logger)
	go srv.acceptLoop(ctx, ln)

	logger.Info("duskdagd running", "bind", cfg.BindAddr)
	<-ctx.Done()
	logger.Info("duskdagd stopped")
	return 0
}

// server holds the state shared across accepted connections: the
// bounded set of known peer addresses, the configuration governing
// rate limits applied to each, and the handshake-dedup bookkeeping
// that guards against a peer id or address being active twice at once.
type server struct {
	cfg        config.Config
	knownPeers *peer.PeerSet
	logger     *slog.Logger
	networkID  hashid.Hash

	handshakeMu    sync.Mutex
	peerIDsInUse   map[hashid.Hash]struct{}
	connectedAddrs map[netip.AddrPort]struct{}
}

func newServer(cfg config.Config, knownPeers *peer.PeerSet, logger *slog.Logger) *server {
	return &server{
		cfg:            cfg,
		knownPeers:     knownPeers,
		logger:         logger,
		networkID:      networkIDFromName(cfg.Network),
		peerIDsInUse:   make(map[hashid.Hash]struct{}),
		connectedAddrs: make(map[netip.AddrPort]struct{}),
	}
}

// networkIDFromName derives a stable network identifier from the
// configured network name, so peers on different networks (e.g.
// "devnet" vs "mainnet") fail the handshake's network id check
// instead of silently cross-talking.
func networkIDFromName(name string) hashid.Hash {
	return hashid.Sum256([]byte(name))
}

// registerHandshake admits a freshly handshaked peer id/address pair,
// rejecting it if either is already in use by another live connection.
// Both checks run under the same lock so a concurrent handshake can
// never observe a partially registered pair.
func (s *server) registerHandshake(peerID hashid.Hash, addr netip.AddrPort) error {
	s.handshakeMu.Lock()
	defer s.handshakeMu.Unlock()
	if err := protocolrules.CheckPeerIDNotDuplicate(s.peerIDsInUse, peerID); err != nil {
		return err
	}
	if err := protocolrules.CheckAddressNotConnected(s.connectedAddrs, addr); err != nil {
		return err
	}
	s.peerIDsInUse[peerID] = struct{}{}
	s.connectedAddrs[addr] = struct{}{}
	return nil
}

func (s *server) unregisterHandshake(peerID hashid.Hash, addr netip.AddrPort) {
	s.handshakeMu.Lock()
	defer s.handshakeMu.Unlock()
	delete(s.peerIDsInUse, peerID)
	delete(s.connectedAddrs, addr)
}

// acceptLoop accepts inbound connections and hands each to its own
// handler goroutine, so a slow or stalled peer never blocks acceptance
// of the next one.
func (s *server) acceptLoop(ctx context.Context, ln net.Listener) {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("accept failed", "err", err)
			continue
		}
		go s.handleConn(conn)
	}
}

type noopNotifier struct{}

func (noopNotifier) PeerStateUpdated(*peer.Peer, peer.Summary)    {}
func (noopNotifier) PeerPeerListUpdated(*peer.Peer, ping.Payload) {}

// handleConn reads and decodes one envelope at a time from an inbound
// peer connection, applying the Ping rate limit and state-update
// rules before anything else is done with a packet.
func (s *server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	remote, err := addrPortFromNetAddr(conn.RemoteAddr())
	if err != nil {
		s.logger.Warn("peer connected with unparseable address", "addr", conn.RemoteAddr().String())
		return
	}
	if !s.knownPeers.UpdateAllowIn(remote) {
		s.logger.Warn("rejecting duplicate inbound peer", "addr", remote)
		return
	}

	p := peer.New(remote, netip.AddrPort{}, peer.DirectionIn)
	notifier := noopNotifier{}
	handshakeComplete := false
	var handshakePeerID hashid.Hash

	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout)); err != nil {
		s.logger.Warn("failed to arm handshake deadline", "addr", remote, "err", err)
		return
	}
	defer func() {
		if handshakeComplete {
			s.unregisterHandshake(handshakePeerID, remote)
		}
	}()

	for {
		pkt, err := readEnvelope(conn)
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("dropping peer on read/decode error", "addr", remote, "err", err)
			}
			return
		}

		if err := protocolrules.CheckHandshakeFirst(handshakeComplete, pkt.Tag() == packet.TagHandshake); err != nil {
			p.Ban.Add(time.Now(), 100)
			s.logger.Warn("packet before handshake, dropping peer", "addr", remote, "err", err)
			return
		}

		switch v := pkt.(type) {
		case packet.Handshake:
			if err := protocolrules.CheckNetworkID(v.NetworkID, s.networkID); err != nil {
				p.Ban.Add(time.Now(), 100)
				s.logger.Warn("network id mismatch, dropping peer", "addr", remote, "err", err)
				return
			}
			if err := s.registerHandshake(v.PeerID, remote); err != nil {
				p.Ban.Add(time.Now(), 10)
				s.logger.Warn("rejecting duplicate handshake, dropping peer", "addr", remote, "err", err)
				return
			}
			handshakePeerID = v.PeerID
			handshakeComplete = true
			if err := conn.SetReadDeadline(time.Time{}); err != nil {
				s.logger.Warn("failed to clear handshake deadline", "addr", remote, "err", err)
				return
			}
			s.logger.Debug("handshake accepted", "addr", remote, "peer_id", v.PeerID)
		case packet.PingPacket:
			now := time.Now()
			if err := protocolrules.CheckPingInterval(p.LastPingAt(), now, s.cfg.PingInterval); err != nil {
				p.Ban.Add(now, 10)
				s.logger.Warn("peer pinged too fast, dropping", "addr", remote, "err", err)
				return
			}
			p.MarkPinged(now)
			if len(v.Payload.PeerList) > 0 {
				if err := protocolrules.CheckPeerListInterval(p.LastPeerListAt(), now, s.cfg.PeerListInterval); err != nil {
					p.Ban.Add(now, 10)
					s.logger.Warn("peer list updated too fast, dropping peer", "addr", remote, "err", err)
					return
				}
			}
			if err := ping.UpdatePeer(p, v.Payload, notifier); err != nil {
				p.Ban.Add(now, 10)
				s.logger.Warn("rejecting malformed ping, dropping peer", "addr", remote, "err", err)
				return
			}
			if len(v.Payload.PeerList) > 0 {
				p.MarkPeerListUpdated(now)
			}
			s.logger.Debug("ping applied", "addr", remote, "topoheight", v.Payload.Topoheight)
		default:
			s.logger.Debug("packet received", "addr", remote, "tag", pkt.Tag())
		}
	}
}

// readEnvelope reads one length-prefixed envelope from conn and
// decodes it. The declared length is not bounded here: that many bytes
// are read before packet.DecodeEnvelope re-checks the length against
// them.
func readEnvelope(conn net.Conn) (packet.Packet, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, err
	}
	bodyLen := be32(lenBuf)
	rest := make([]byte, bodyLen)
	if _, err := io.ReadFull(conn, rest); err != nil {
		return nil, err
	}
	return packet.DecodeEnvelope(append(lenBuf, rest...))
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func addrPortFromNetAddr(addr net.Addr) (netip.AddrPort, error) {
	return netip.ParseAddrPort(addr.String())
}

func printConfig(w io.Writer, cfg config.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
