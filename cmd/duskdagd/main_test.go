package main

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"testing"
	"time"

	"duskdag.dev/node/config"
	"duskdag.dev/node/packet"
	"duskdag.dev/node/peer"
	"duskdag.dev/node/ping"
)

func TestRunDryRunSucceeds(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code=%d, stderr=%s", code, errOut.String())
	}
	if out.Len() == 0 {
		t.Fatal("expected printed config on stdout")
	}
}

func TestRunRejectsInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir, "--log-level", "verbose"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("exit code=%d, want 2", code)
	}
	if errOut.Len() == 0 {
		t.Fatal("expected stderr output for invalid config")
	}
}

func TestRunRejectsBadFlag(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir, "--unknown-flag"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("exit code=%d, want 2", code)
	}
}

func TestMultiStringFlagSetAppendsAndStringsJoin(t *testing.T) {
	var m multiStringFlag
	if err := m.Set("a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set("b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := m.String(); got != "a,b" {
		t.Fatalf("string=%q, want %q", got, "a,b")
	}
}

func TestRunBootstrapPeersNormalized(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{
		"--dry-run", "--datadir", dir,
		"--peers", "127.0.0.1:1,127.0.0.1:2",
		"--peer", "127.0.0.1:2",
	}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code=%d, stderr=%s", code, errOut.String())
	}
}

func newTestServer(t *testing.T) *server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.HandshakeTimeout = 200 * time.Millisecond
	var logBuf bytes.Buffer
	return newServer(cfg, peer.NewPeerSet(), slog.New(slog.NewTextHandler(&logBuf, nil)))
}

// loopbackPair opens a real TCP listener on 127.0.0.1 and dials it, so
// both ends carry parseable host:port addresses the way a live peer
// connection would (unlike net.Pipe, whose synthetic addresses fail
// netip.ParseAddrPort).
func loopbackPair(t *testing.T) (client net.Conn, serverSide net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	serverSide = <-accepted
	if serverSide == nil {
		t.Fatal("accept failed")
	}
	return client, serverSide
}

func TestHandleConnDropsPeerOnPacketBeforeHandshake(t *testing.T) {
	srv := newTestServer(t)
	clientConn, serverConn := loopbackPair(t)
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.handleConn(serverConn)
		close(done)
	}()

	if _, err := clientConn.Write(packet.EncodeEnvelope(packet.PingPacket{})); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not close connection after pre-handshake packet")
	}
}

func TestHandleConnAcceptsHandshakeThenClearsDeadline(t *testing.T) {
	srv := newTestServer(t)
	clientConn, serverConn := loopbackPair(t)
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.handleConn(serverConn)
		close(done)
	}()

	hs := packet.Handshake{NetworkID: srv.networkID, PeerID: srv.networkID}
	if _, err := clientConn.Write(packet.EncodeEnvelope(hs)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	// Wait past the handshake timeout: once the handshake is accepted the
	// read deadline is cleared, so the connection must still be open.
	select {
	case <-done:
		t.Fatal("handleConn closed the connection after a valid handshake; read deadline was not cleared")
	case <-time.After(3 * srv.cfg.HandshakeTimeout):
	}

	_ = clientConn.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not exit after client close")
	}
}

func TestHandleConnRejectsWrongNetworkID(t *testing.T) {
	srv := newTestServer(t)
	clientConn, serverConn := loopbackPair(t)
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		srv.handleConn(serverConn)
		close(done)
	}()

	hs := packet.Handshake{NetworkID: networkIDFromName("other-network"), PeerID: srv.networkID}
	if _, err := clientConn.Write(packet.EncodeEnvelope(hs)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	buf := make([]byte, 1)
	_ = clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := clientConn.Read(buf)
	if err != io.EOF {
		t.Fatalf("expected connection closed (EOF), got %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not close connection on network id mismatch")
	}
}

func TestHandleConnRejectsDuplicatePeerID(t *testing.T) {
	srv := newTestServer(t)
	duplicateID := networkIDFromName("dup-peer")

	firstClient, firstServerConn := loopbackPair(t)
	defer firstClient.Close()
	firstDone := make(chan struct{})
	go func() {
		srv.handleConn(firstServerConn)
		close(firstDone)
	}()
	hs := packet.Handshake{NetworkID: srv.networkID, PeerID: duplicateID}
	if _, err := firstClient.Write(packet.EncodeEnvelope(hs)); err != nil {
		t.Fatalf("write first handshake: %v", err)
	}
	// Give the first connection a moment to register before the
	// second dials in with the same peer id.
	time.Sleep(50 * time.Millisecond)

	secondClient, secondServerConn := loopbackPair(t)
	defer secondClient.Close()
	secondDone := make(chan struct{})
	go func() {
		srv.handleConn(secondServerConn)
		close(secondDone)
	}()
	if _, err := secondClient.Write(packet.EncodeEnvelope(hs)); err != nil {
		t.Fatalf("write second handshake: %v", err)
	}

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not close the duplicate-peer-id connection")
	}

	_ = firstClient.Close()
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first handleConn did not exit after client close")
	}
}

func TestHandleConnEnforcesPeerListInterval(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.PingInterval = 10 * time.Millisecond
	srv.cfg.PeerListInterval = time.Hour

	clientConn, serverConn := loopbackPair(t)
	defer clientConn.Close()
	done := make(chan struct{})
	go func() {
		srv.handleConn(serverConn)
		close(done)
	}()

	hs := packet.Handshake{NetworkID: srv.networkID, PeerID: networkIDFromName("peer-list-peer")}
	if _, err := clientConn.Write(packet.EncodeEnvelope(hs)); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	otherAddr := netipMustParse(t, "5.6.7.8:4444")
	firstPing := packet.PingPacket{Payload: ping.Payload{PeerList: []netip.AddrPort{otherAddr}}}
	if _, err := clientConn.Write(packet.EncodeEnvelope(firstPing)); err != nil {
		t.Fatalf("write first ping: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	secondPing := packet.PingPacket{Payload: ping.Payload{PeerList: []netip.AddrPort{otherAddr}}}
	if _, err := clientConn.Write(packet.EncodeEnvelope(secondPing)); err != nil {
		t.Fatalf("write second ping: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConn did not drop peer for exceeding the peer-list interval")
	}
}

func netipMustParse(t *testing.T, s string) netip.AddrPort {
	t.Helper()
	a, err := netip.ParseAddrPort(s)
	if err != nil {
		t.Fatalf("parse addr %q: %v", s, err)
	}
	return a
}
