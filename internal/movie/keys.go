/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package movie

import "math/rand/v2"

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// KeyLength matches the document IDs the catalog hands out, so that a
// random key lands uniformly between existing IDs.
const KeyLength = 20

func NewKey() string {
	b := make([]byte, KeyLength)
	for i := range b {
		b[i] = keyAlphabet[rand.IntN(len(keyAlphabet))]
	}
	return string(b)
}
