package accountstate

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"duskdag.dev/node/block"
	"duskdag.dev/node/hashid"
)

// BoltStorage is the bbolt-backed Storage implementation: per-block
// height and cumulative-difficulty buckets, plus per-key nonce and
// per-(account, asset) balance entries, each holding the latest
// version and the topoheight of the one before it.
type BoltStorage struct {
	db *bolt.DB
}

var (
	bucketBlockHeight     = []byte("block_height")
	bucketBlockDifficulty = []byte("block_cumulative_difficulty")
	bucketNonces          = []byte("nonces_by_key")
	bucketBalances        = []byte("balances_by_key_asset")
	bucketAccountAssets   = []byte("account_asset_index")
)

// OpenBoltStorage opens (creating if absent) a bbolt-backed store at
// datadir/state.db.
func OpenBoltStorage(datadir string) (*BoltStorage, error) {
	if datadir == "" {
		return nil, fmt.Errorf("accountstate: datadir required")
	}
	if err := os.MkdirAll(datadir, 0o700); err != nil {
		return nil, fmt.Errorf("accountstate: mkdir datadir: %w", err)
	}
	path := filepath.Join(datadir, "state.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("accountstate: open bbolt: %w", err)
	}
	s := &BoltStorage{db: db}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlockHeight, bucketBlockDifficulty, bucketNonces, bucketBalances, bucketAccountAssets} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying bbolt handle.
func (s *BoltStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutBlockMeta records a block's height and cumulative difficulty, the
// write side of dag.DifficultyProvider.
func (s *BoltStorage) PutBlockMeta(hash hashid.Hash, height uint64, cumulative hashid.Difficulty) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var hb [8]byte
		binary.BigEndian.PutUint64(hb[:], height)
		if err := tx.Bucket(bucketBlockHeight).Put(hash[:], hb[:]); err != nil {
			return err
		}
		return tx.Bucket(bucketBlockDifficulty).Put(hash[:], cumulative.Big().Bytes())
	})
}

func (s *BoltStorage) HeightForBlockHash(_ context.Context, hash hashid.Hash) (uint64, error) {
	var height uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlockHeight).Get(hash[:])
		if v == nil {
			return fmt.Errorf("accountstate: no height recorded for block %s", hash)
		}
		height = binary.BigEndian.Uint64(v)
		return nil
	})
	return height, err
}

func (s *BoltStorage) CumulativeDifficultyForBlockHash(_ context.Context, hash hashid.Hash) (hashid.Difficulty, error) {
	var diff hashid.Difficulty
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlockDifficulty).Get(hash[:])
		if v == nil {
			return fmt.Errorf("accountstate: no cumulative difficulty recorded for block %s", hash)
		}
		diff = hashid.NewDifficulty(new(big.Int).SetBytes(v))
		return nil
	})
	return diff, err
}

func nonceKey(key block.PublicKey) []byte {
	return key[:]
}

func (s *BoltStorage) HasNonce(_ context.Context, key block.PublicKey) (bool, error) {
	var has bool
	err := s.db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(bucketNonces).Get(nonceKey(key)) != nil
		return nil
	})
	return has, err
}

func (s *BoltStorage) LastNonce(_ context.Context, key block.PublicKey) (uint64, VersionedNonce, error) {
	var topoheight uint64
	var vn VersionedNonce
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketNonces).Get(nonceKey(key))
		if v == nil {
			return fmt.Errorf("accountstate: no nonce recorded for key")
		}
		topoheight, vn = decodeVersionedNonce(v)
		return nil
	})
	return topoheight, vn, err
}

func (s *BoltStorage) SetNonceAtTopoheight(_ context.Context, key block.PublicKey, topoheight uint64, nonce uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		prevTopo, prevVN, hasPrev := func() (uint64, VersionedNonce, bool) {
			v := tx.Bucket(bucketNonces).Get(nonceKey(key))
			if v == nil {
				return 0, VersionedNonce{}, false
			}
			t, vn := decodeVersionedNonce(v)
			return t, vn, true
		}()
		_ = prevVN

		var prevPtr *uint64
		if hasPrev {
			pt := prevTopo
			prevPtr = &pt
		}
		vn := VersionedNonce{Nonce: nonce, PreviousTopoheight: prevPtr}
		return tx.Bucket(bucketNonces).Put(nonceKey(key), encodeVersionedNonce(topoheight, vn))
	})
}

func balanceKey(key block.PublicKey, asset hashid.Hash) []byte {
	out := make([]byte, 0, len(key)+len(asset))
	out = append(out, key[:]...)
	out = append(out, asset[:]...)
	return out
}

func accountIndexKey(key block.PublicKey) []byte {
	return key[:]
}

func (s *BoltStorage) LoadAccountBalances(_ context.Context, key block.PublicKey) ([]AccountAsset, error) {
	var out []AccountAsset
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bucketAccountAssets).Get(accountIndexKey(key))
		assets, err := decodeAssetList(idx)
		if err != nil {
			return err
		}
		balBucket := tx.Bucket(bucketBalances)
		for _, asset := range assets {
			v := balBucket.Get(balanceKey(key, asset))
			if v == nil {
				continue
			}
			topoheight, vb, err := decodeVersionedBalance(v)
			if err != nil {
				return err
			}
			out = append(out, AccountAsset{Asset: asset, Topoheight: topoheight, Balance: vb})
		}
		return nil
	})
	return out, err
}

func (s *BoltStorage) SetLastBalanceTo(_ context.Context, key block.PublicKey, asset hashid.Hash, topoheight uint64, balance VersionedBalance) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBalances).Put(balanceKey(key, asset), encodeVersionedBalance(topoheight, balance)); err != nil {
			return err
		}
		idxBucket := tx.Bucket(bucketAccountAssets)
		assets, err := decodeAssetList(idxBucket.Get(accountIndexKey(key)))
		if err != nil {
			return err
		}
		for _, a := range assets {
			if a == asset {
				return nil // already indexed
			}
		}
		assets = append(assets, asset)
		return idxBucket.Put(accountIndexKey(key), encodeAssetList(assets))
	})
}
