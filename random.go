package main

import (
	"math/rand"
)

const suffixRunes = "abcdefghijklmnopqrstuvwxyz"

const suffixLength = 3

// randomSuffix picks suffixLength distinct letters from suffixRunes.
func randomSuffix(r *rand.Rand) string {
	perm := r.Perm(len(suffixRunes))
	b := make([]byte, suffixLength)
	for i := range b {
		b[i] = suffixRunes[perm[i]]
	}
	return string(b)
}
