// Package fraud implements the deterministic screening gate applied to a
// reservation's identity fields before a claim may commit.
//
// The gate first checks the email syntactically and then runs the
// concatenated name, email and card bytes through a fixed-structure
// numeric pipeline: an L2-normalised feature vector is projected through
// Depth rounds of pseudo-random matrices of width Width, each followed by
// a ReLU.  All randomness comes from a caller-supplied *rand.Rand so that
// a given request and seed always produce the same verdict.
package fraud
