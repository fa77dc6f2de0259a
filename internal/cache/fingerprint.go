// Package cache memoizes optimizer results keyed by snapshot content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
)

// Fingerprint hashes the carriers, units and options that determine an
// optimizer result. CollectedAt is ignored.
func Fingerprint(snap model.Snapshot, opts optimizer.Options) (string, error) {
	data, err := json.Marshal(struct {
		Carriers []model.Carrier   `json:"carriers"`
		Units    []model.Unit      `json:"units"`
		Options  optimizer.Options `json:"options"`
	}{snap.Carriers, snap.Units, opts})
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
