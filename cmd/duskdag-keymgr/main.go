// Command duskdag-keymgr manages at-rest protection of a node's
// ed25519 signing key: wrapping it under an operator-supplied KEK for
// storage, and unwrapping/rewrapping it for key rotation.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"duskdag.dev/node/cryptoiface"
)

// KeyStoreV1 is the on-disk keystore format: an ed25519 secret key
// wrapped under a KEK via AES-256 Key Wrap, alongside the public key
// and a key id derived from it so a reader can sanity-check identity
// without unwrapping.
type KeyStoreV1 struct {
	Version      string `json:"version"` // "DKSv1"
	PubkeyHex    string `json:"pubkey_hex"`
	KeyIDHex     string `json:"key_id_hex"`
	WrapAlg      string `json:"wrap_alg"` // "AES-256-KW"
	WrappedSKHex string `json:"wrapped_sk_hex"`
}

func mustLen(b []byte, n int, name string) error {
	if len(b) != n {
		return fmt.Errorf("%s must be %d bytes (got %d)", name, n, len(b))
	}
	return nil
}

func hexDecodeStrict(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return hex.DecodeString(s)
}

// checkWrapBackendHealth runs a single health probe against kw before
// a key export is allowed to proceed: it wraps and unwraps a throwaway
// buffer under kek and refuses the export unless the round trip
// succeeds, so a misconfigured or failing key-wrap backend can never
// silently produce a corrupt keystore.
func checkWrapBackendHealth(kw cryptoiface.KeyWrap, kek []byte) error {
	probe := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	check := func() error {
		wrapped, err := kw.Wrap(kek, probe)
		if err != nil {
			return err
		}
		got, err := kw.Unwrap(kek, wrapped)
		if err != nil {
			return err
		}
		if len(got) != len(probe) {
			return fmt.Errorf("keywrap probe round-trip length mismatch")
		}
		for i := range probe {
			if got[i] != probe[i] {
				return fmt.Errorf("keywrap probe round-trip content mismatch")
			}
		}
		return nil
	}

	cfg := cryptoiface.DefaultHealthMonitorConfig()
	cfg.FailThreshold = 1 // a one-shot probe has no room for transient-failure tolerance
	hm := cryptoiface.NewHealthMonitor(cfg, check, nil, nil)
	hm.CheckOnce()
	if !hm.CanSign() {
		return fmt.Errorf("backend state=%s", hm.State())
	}
	return nil
}

// safeReadFile rejects paths whose base name isn't a plain file name
// (no directory traversal via "..", no absolute base component).
func safeReadFile(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	return fs.ReadFile(os.DirFS(dir), name)
}

func cmdExportWrapped(argv []string) error {
	fs := flag.NewFlagSet("export-wrapped", flag.ExitOnError)
	out := fs.String("out", "", "output keystore json path")
	pubkeyHex := fs.String("pubkey-hex", "", "ed25519 public key bytes (hex)")
	skHex := fs.String("sk-hex", "", "ed25519 secret key bytes (hex) to wrap")
	kekHex := fs.String("kek-hex", "", "AES-256 KEK (32 bytes hex)")
	_ = fs.Parse(argv)
	if *out == "" || *pubkeyHex == "" || *skHex == "" || *kekHex == "" {
		return fmt.Errorf("missing required flags: --out --pubkey-hex --sk-hex --kek-hex")
	}

	pub, err := hexDecodeStrict(*pubkeyHex)
	if err != nil {
		return fmt.Errorf("pubkey-hex: %w", err)
	}
	kek, err := hexDecodeStrict(*kekHex)
	if err != nil {
		return fmt.Errorf("kek-hex: %w", err)
	}
	if err := mustLen(kek, 32, "kek"); err != nil {
		return err
	}
	sk, err := hexDecodeStrict(*skHex)
	if err != nil {
		return fmt.Errorf("sk-hex: %w", err)
	}
	if len(sk) == 0 || len(sk)%8 != 0 {
		return fmt.Errorf("sk must be a non-zero multiple of 8 bytes (AES-KW requirement)")
	}

	stub := cryptoiface.DevStub{}
	keyID := stub.Sum256(pub)

	kw := cryptoiface.SoftwareKeyWrap{}
	if err := checkWrapBackendHealth(kw, kek); err != nil {
		return fmt.Errorf("signing backend unhealthy, refusing export: %w", err)
	}

	wrapped, err := kw.Wrap(kek, sk)
	if err != nil {
		return err
	}

	ks := KeyStoreV1{
		Version:      "DKSv1",
		PubkeyHex:    hex.EncodeToString(pub),
		KeyIDHex:     hex.EncodeToString(keyID[:]),
		WrapAlg:      "AES-256-KW",
		WrappedSKHex: hex.EncodeToString(wrapped),
	}
	b, err := json.Marshal(ks)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(*out, b, 0o600)
}

func readKeystore(path string) (*KeyStoreV1, error) {
	raw, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks KeyStoreV1
	if err := json.Unmarshal(raw, &ks); err != nil {
		return nil, err
	}
	if ks.Version != "DKSv1" {
		return nil, fmt.Errorf("unsupported keystore version: %q", ks.Version)
	}
	if strings.ToUpper(ks.WrapAlg) != "AES-256-KW" {
		return nil, fmt.Errorf("unsupported wrap_alg: %q", ks.WrapAlg)
	}
	return &ks, nil
}

func cmdImportWrapped(argv []string) error {
	fs := flag.NewFlagSet("import-wrapped", flag.ExitOnError)
	in := fs.String("in", "", "input keystore json path")
	out := fs.String("out", "", "output keystore json path")
	oldKekHex := fs.String("old-kek-hex", "", "old AES-256 KEK (32 bytes hex)")
	newKekHex := fs.String("new-kek-hex", "", "new AES-256 KEK (32 bytes hex)")
	_ = fs.Parse(argv)
	if *in == "" || *out == "" || *oldKekHex == "" || *newKekHex == "" {
		return fmt.Errorf("missing required flags: --in --out --old-kek-hex --new-kek-hex")
	}

	ks, err := readKeystore(*in)
	if err != nil {
		return err
	}

	oldKek, err := hexDecodeStrict(*oldKekHex)
	if err != nil {
		return fmt.Errorf("old-kek-hex: %w", err)
	}
	if err := mustLen(oldKek, 32, "old-kek"); err != nil {
		return err
	}
	newKek, err := hexDecodeStrict(*newKekHex)
	if err != nil {
		return fmt.Errorf("new-kek-hex: %w", err)
	}
	if err := mustLen(newKek, 32, "new-kek"); err != nil {
		return err
	}
	wrapped, err := hexDecodeStrict(ks.WrappedSKHex)
	if err != nil {
		return fmt.Errorf("wrapped_sk_hex: %w", err)
	}

	kw := cryptoiface.SoftwareKeyWrap{}
	plain, err := kw.Unwrap(oldKek, wrapped)
	if err != nil {
		return err
	}
	newWrapped, err := kw.Wrap(newKek, plain)
	if err != nil {
		return err
	}
	ks.WrappedSKHex = hex.EncodeToString(newWrapped)

	b, err := json.Marshal(ks)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(*out, b, 0o600)
}

func cmdVerifyPubkey(argv []string) (string, error) {
	fs := flag.NewFlagSet("verify-pubkey", flag.ExitOnError)
	in := fs.String("in", "", "input keystore json path")
	expectedKeyIDHex := fs.String("expected-key-id-hex", "", "optional expected key_id hex")
	_ = fs.Parse(argv)
	if *in == "" {
		return "", fmt.Errorf("missing required flag: --in")
	}

	ks, err := readKeystore(*in)
	if err != nil {
		return "", err
	}
	pub, err := hexDecodeStrict(ks.PubkeyHex)
	if err != nil {
		return "", fmt.Errorf("pubkey_hex: %w", err)
	}

	stub := cryptoiface.DevStub{}
	keyID := stub.Sum256(pub)
	gotHex := hex.EncodeToString(keyID[:])

	if ks.KeyIDHex != "" && !strings.EqualFold(ks.KeyIDHex, gotHex) {
		return "", fmt.Errorf("keystore key_id mismatch: embedded=%s computed=%s", ks.KeyIDHex, gotHex)
	}
	if *expectedKeyIDHex != "" {
		exp := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(*expectedKeyIDHex), "0x"))
		if exp != gotHex {
			return "", fmt.Errorf("expected key_id mismatch: expected=%s computed=%s", exp, gotHex)
		}
	}
	return gotHex, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "usage: duskdag-keymgr <export-wrapped|import-wrapped|verify-pubkey> [flags]")
		return 2
	}
	sub := argv[0]
	subargv := argv[1:]

	switch sub {
	case "export-wrapped":
		if err := cmdExportWrapped(subargv); err != nil {
			fmt.Fprintln(os.Stderr, "export-wrapped error:", err)
			return 1
		}
		fmt.Println("OK")
		return 0
	case "import-wrapped":
		if err := cmdImportWrapped(subargv); err != nil {
			fmt.Fprintln(os.Stderr, "import-wrapped error:", err)
			return 1
		}
		fmt.Println("OK")
		return 0
	case "verify-pubkey":
		out, err := cmdVerifyPubkey(subargv)
		if err != nil {
			fmt.Fprintln(os.Stderr, "verify-pubkey error:", err)
			return 1
		}
		fmt.Println(out)
		return 0
	default:
		fmt.Fprintln(os.Stderr, "unknown subcommand:", sub)
		return 2
	}
}
