// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package vision provides the visual collaborators of the recommendation
// engine: the image similarity oracle used for site identification and the
// object-detection client used for scene context.
package vision

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"

	"github.com/andariego-ec/andariego/internal/cache"
	"github.com/andariego-ec/andariego/internal/logging"
)

// Oracle scores visual similarity between two images on disk.
//
// Similarity returns a score in [0, 1], monotonically higher for more
// similar inputs. Any internal failure degrades to 0.0 — a low score is a
// valid, meaningful outcome, never an error the caller must handle.
type Oracle interface {
	Similarity(ctx context.Context, pathA, pathB string) float64
}

// siteHashes holds the perceptual fingerprints for one image.
type siteHashes struct {
	perception *goimagehash.ImageHash
	difference *goimagehash.ImageHash
}

// PerceptualOracle implements Oracle with perceptual hashing. Two hash
// families (pHash and dHash) are combined to reduce false positives from
// either family alone; the normalized Hamming similarity of each is
// averaged into the final score.
//
// Reference-image hashes are memoized in an LRU so repeat identifications
// against the same catalog images skip the decode step.
type PerceptualOracle struct {
	refCache *cache.LRU[siteHashes]
}

// NewPerceptualOracle creates an oracle with the given reference-hash cache
// capacity and TTL.
func NewPerceptualOracle(cacheSize int, cacheTTL time.Duration) *PerceptualOracle {
	return &PerceptualOracle{
		refCache: cache.NewLRU[siteHashes](cacheSize, cacheTTL),
	}
}

// hashBits is the size of both hash families; distances normalize against it.
const hashBits = 64.0

// Similarity computes the combined perceptual similarity of two images.
func (o *PerceptualOracle) Similarity(ctx context.Context, pathA, pathB string) float64 {
	a, err := o.hashQuery(pathA)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("path", pathA).Msg("Query image hash failed")
		return 0.0
	}

	// Reference images come from the catalog and rarely change; cache them.
	b, ok := o.refCache.Get(pathB)
	if !ok {
		hashed, err := o.hashQuery(pathB)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("path", pathB).Msg("Reference image hash failed")
			return 0.0
		}
		o.refCache.Add(pathB, hashed)
		b = hashed
	}

	pSim, err := hashSimilarity(a.perception, b.perception)
	if err != nil {
		return 0.0
	}
	dSim, err := hashSimilarity(a.difference, b.difference)
	if err != nil {
		return 0.0
	}

	score := (pSim + dSim) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// hashQuery decodes an image file and computes both hash families.
func (o *PerceptualOracle) hashQuery(path string) (siteHashes, error) {
	img, err := decodeImage(path)
	if err != nil {
		return siteHashes{}, err
	}

	p, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return siteHashes{}, fmt.Errorf("perception hash: %w", err)
	}
	d, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return siteHashes{}, fmt.Errorf("difference hash: %w", err)
	}
	return siteHashes{perception: p, difference: d}, nil
}

// hashSimilarity converts a Hamming distance into a [0,1] similarity.
func hashSimilarity(a, b *goimagehash.ImageHash) (float64, error) {
	dist, err := a.Distance(b)
	if err != nil {
		return 0, err
	}
	return 1.0 - float64(dist)/hashBits, nil
}

// decodeImage opens and decodes an image file (jpeg, png, gif, webp).
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the catalog or request temp files
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// NoopOracle always returns 0.0. It stands in when no similarity model is
// configured, which turns every identification into a distance-based
// suggestion at most.
type NoopOracle struct{}

// Similarity always returns 0.0.
func (NoopOracle) Similarity(_ context.Context, _, _ string) float64 { return 0.0 }
