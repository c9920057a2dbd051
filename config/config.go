// Package config holds the node's runtime configuration: network
// selection, storage location, p2p bind/peer settings, and the
// protocol rate limits enforced by package protocolrules.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the effective node configuration after flag parsing and
// defaulting.
type Config struct {
	Network  string   `json:"network"`
	DataDir  string   `json:"data_dir"`
	BindAddr string   `json:"bind_addr"`
	LogLevel string   `json:"log_level"`
	Peers    []string `json:"peers"`
	MaxPeers int      `json:"max_peers"`

	PingInterval     time.Duration `json:"ping_interval"`
	PeerListInterval time.Duration `json:"peer_list_interval"`
	PeerListLimit    int           `json:"peer_list_limit"`

	// HandshakeTimeout bounds how long a connection may sit unhandshaked
	// before the node closes it.
	HandshakeTimeout time.Duration `json:"handshake_timeout"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultDataDir returns the platform home-relative data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".duskdag"
	}
	return filepath.Join(home, ".duskdag")
}

// DefaultConfig returns the node's out-of-the-box configuration.
func DefaultConfig() Config {
	return Config{
		Network:          "devnet",
		DataDir:          DefaultDataDir(),
		BindAddr:         "0.0.0.0:29111",
		Peers:            nil,
		LogLevel:         "info",
		MaxPeers:         64,
		PingInterval:     30 * time.Second,
		PeerListInterval: 60 * time.Second,
		PeerListLimit:    255,
		HandshakeTimeout: 10 * time.Second,
	}
}

// NormalizePeers flattens comma-separated and repeated peer tokens
// into a deduplicated, order-preserving list.
func NormalizePeers(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, p := range strings.Split(token, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig rejects a Config with missing or out-of-range fields.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if err := validateAddr(cfg.BindAddr); err != nil {
		return fmt.Errorf("invalid bind_addr: %w", err)
	}
	for _, peer := range cfg.Peers {
		if err := validatePeerAddr(peer); err != nil {
			return fmt.Errorf("invalid peer %q: %w", peer, err)
		}
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.MaxPeers <= 0 {
		return errors.New("max_peers must be > 0")
	}
	if cfg.MaxPeers > 4096 {
		return errors.New("max_peers must be <= 4096")
	}
	if cfg.PingInterval <= 0 {
		return errors.New("ping_interval must be > 0")
	}
	if cfg.PeerListInterval <= 0 {
		return errors.New("peer_list_interval must be > 0")
	}
	if cfg.PeerListLimit <= 0 || cfg.PeerListLimit > 255 {
		return errors.New("peer_list_limit must be in 1..=255")
	}
	if cfg.HandshakeTimeout <= 0 {
		return errors.New("handshake_timeout must be > 0")
	}
	return nil
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return errors.New("missing port")
	}
	if strings.Contains(host, " ") {
		return errors.New("invalid host")
	}
	return nil
}

func validatePeerAddr(addr string) error {
	if err := validateAddr(addr); err != nil {
		return err
	}
	host, _, _ := net.SplitHostPort(addr)
	if strings.TrimSpace(host) == "" {
		return errors.New("missing host")
	}
	return nil
}
