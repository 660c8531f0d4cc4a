package domain

import (
	"fmt"
	"math/rand"
)

const (
	transactionReferencePrefix = "TXN"
	transferReferencePrefix    = "TRF"
)

// ReferenceGenerator produces human-legible transaction references:
// a prefix, a millisecond timestamp and four random digits. Uniqueness is
// enforced by the store; a collision surfaces as ErrDuplicateReference and
// the caller retries with a fresh reference.
type ReferenceGenerator struct {
	clock Clock
}

func NewReferenceGenerator(clock Clock) *ReferenceGenerator {
	return &ReferenceGenerator{clock: clock}
}

func (g *ReferenceGenerator) TransactionReference() string {
	return g.generate(transactionReferencePrefix)
}

func (g *ReferenceGenerator) TransferReference() string {
	return g.generate(transferReferencePrefix)
}

func (g *ReferenceGenerator) generate(prefix string) string {
	return fmt.Sprintf("%s%d%04d", prefix, g.clock.Now().UTC().UnixMilli(), rand.Intn(10000))
}
