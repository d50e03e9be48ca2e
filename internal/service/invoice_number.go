package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// InvoiceNumberPrefix starts every invoice number.
const InvoiceNumberPrefix = "INV"

// NumberGenerator produces invoice numbers of the form INV<yy><mm><nnn>.
// Numbers are not unique by construction; storage rejects duplicates per
// owner and the caller draws again.
type NumberGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewNumberGenerator seeds from src, or from the runtime when src is nil.
func NewNumberGenerator(src rand.Source) *NumberGenerator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &NumberGenerator{rnd: rand.New(src)}
}

// Next returns a number for an invoice created at now.
func (g *NumberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	n := g.rnd.IntN(1000)
	g.mu.Unlock()
	return fmt.Sprintf("%s%s%03d", InvoiceNumberPrefix, now.Format("0601"), n)
}
