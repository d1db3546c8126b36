// FILENAME: internal/work/work.go
package work

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/xkilldash9x/gbench/internal/clock"
)

// ElementSize is the size in bytes of one matrix cell.
const ElementSize = uint64(unsafe.Sizeof(uint64(0)))

// ErrAllocation reports that a task's scratch buffer could not be allocated.
var ErrAllocation = errors.New("work: buffer allocation failed")

// MatrixSide returns the side n of the three square matrices that together
// fill roughly footprintKB kilobytes: floor(sqrt(footprintKB*1024/3/ElementSize)).
func MatrixSide(footprintKB uint64) uint64 {
	hi, bytes := bits.Mul64(footprintKB, 1024)
	if hi != 0 {
		bytes = math.MaxUint64
	}
	cells := bytes / 3 / ElementSize
	n := uint64(math.Sqrt(float64(cells)))
	// float64 loses precision for very large footprints
	for n > 0 && (n > math.MaxUint32 || n*n > cells) {
		n--
	}
	for n+1 <= math.MaxUint32 && (n+1)*(n+1) <= cells {
		n++
	}
	return n
}

// Buffers is one contiguous allocation exposed as three non-overlapping
// n×n matrices: A and B are the operands, C receives the product.
type Buffers struct {
	n    int
	data []uint64
}

// NewBuffers sizes and allocates the scratch matrices for footprintKB.
func NewBuffers(footprintKB uint64) (buf *Buffers, err error) {
	side := MatrixSide(footprintKB)
	hi, sq := bits.Mul64(side, side)
	hi2, total := bits.Mul64(sq, 3)
	if hi != 0 || hi2 != 0 || total > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %d KB footprint overflows", ErrAllocation, footprintKB)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d cells: %v", ErrAllocation, total, r)
		}
	}()

	b := &Buffers{n: int(side), data: make([]uint64, total)}
	b.seed()
	return b, nil
}

// seed fills the operands with non-zero values so products are not trivially zero.
func (b *Buffers) seed() {
	a, m := b.A(), b.B()
	for i := range a {
		a[i] = uint64(i) + 1
		m[i] = uint64(len(m) - i)
	}
}

// Side returns n.
func (b *Buffers) Side() int { return b.n }

// Len returns the total number of cells, always 3*n*n.
func (b *Buffers) Len() int { return len(b.data) }

func (b *Buffers) view(k int) []uint64 {
	sz := b.n * b.n
	return b.data[k*sz : (k+1)*sz : (k+1)*sz]
}

// A returns the first operand.
func (b *Buffers) A() []uint64 { return b.view(0) }

// B returns the second operand.
func (b *Buffers) B() []uint64 { return b.view(1) }

// C returns the product matrix.
func (b *Buffers) C() []uint64 { return b.view(2) }

// Multiply computes C = A × B with the naive triple loop.
// B is walked column by column.
func (b *Buffers) Multiply() {
	n := b.n
	m1, m2, m3 := b.A(), b.B(), b.C()
	for i := 0; i < n; i++ {
		row := m1[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			var sum uint64
			for k := 0; k < n; k++ {
				sum += row[k] * m2[k*n+j]
			}
			m3[i*n+j] = sum
		}
	}
}

// Burst multiplies repeatedly until more than budget microseconds have
// passed since sw was started, and returns the elapsed time. At least one
// multiplication always runs.
func Burst(b *Buffers, sw *clock.Stopwatch, budget uint64) uint64 {
	for {
		b.Multiply()
		if elapsed := sw.Elapsed(); elapsed > budget {
			return elapsed
		}
	}
}
