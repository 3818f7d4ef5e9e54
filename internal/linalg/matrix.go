package linalg

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Matrix is a dense square complex matrix stored row-major.
type Matrix struct {
	N    int
	Data []complex128
}

func New(n int) *Matrix {
	return &Matrix{N: n, Data: make([]complex128, n*n)}
}

func Identity(n int) *Matrix {
	m := New(n)
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m
}

func (m *Matrix) At(i, j int) complex128 { return m.Data[i*m.N+j] }

func (m *Matrix) Set(i, j int, v complex128) { m.Data[i*m.N+j] = v }

func (m *Matrix) Clone() *Matrix {
	c := New(m.N)
	copy(c.Data, m.Data)
	return c
}

func (m *Matrix) Zero() {
	for i := range m.Data {
		m.Data[i] = 0
	}
}

func Mul(a, b *Matrix) *Matrix {
	n := a.N
	c := New(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a.Data[i*n+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				c.Data[i*n+j] += aik * b.Data[k*n+j]
			}
		}
	}
	return c
}

func Add(a, b *Matrix) *Matrix {
	c := New(a.N)
	for i := range c.Data {
		c.Data[i] = a.Data[i] + b.Data[i]
	}
	return c
}

func Sub(a, b *Matrix) *Matrix {
	c := New(a.N)
	for i := range c.Data {
		c.Data[i] = a.Data[i] - b.Data[i]
	}
	return c
}

func Scale(s complex128, a *Matrix) *Matrix {
	c := New(a.N)
	for i := range c.Data {
		c.Data[i] = s * a.Data[i]
	}
	return c
}

// Dagger returns the conjugate transpose.
func Dagger(a *Matrix) *Matrix {
	n := a.N
	c := New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c.Data[j*n+i] = cmplx.Conj(a.Data[i*n+j])
		}
	}
	return c
}

// Kron returns the Kronecker product a⊗b, dimension a.N*b.N.
func Kron(a, b *Matrix) *Matrix {
	na, nb := a.N, b.N
	n := na * nb
	c := New(n)
	for i := 0; i < na; i++ {
		for j := 0; j < na; j++ {
			aij := a.Data[i*na+j]
			if aij == 0 {
				continue
			}
			for k := 0; k < nb; k++ {
				for l := 0; l < nb; l++ {
					c.Data[(i*nb+k)*n+(j*nb+l)] = aij * b.Data[k*nb+l]
				}
			}
		}
	}
	return c
}

// Commutator returns ab - ba.
func Commutator(a, b *Matrix) *Matrix {
	return Sub(Mul(a, b), Mul(b, a))
}

func Trace(a *Matrix) complex128 {
	var t complex128
	for i := 0; i < a.N; i++ {
		t += a.Data[i*a.N+i]
	}
	return t
}

// Expect computes Tr(O ρ) without forming the product.
func Expect(op, rho *Matrix) complex128 {
	n := op.N
	var t complex128
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t += op.Data[i*n+j] * rho.Data[j*n+i]
		}
	}
	return t
}

// HermitianDefect returns the largest |m[i][j] - conj(m[j][i])|.
func HermitianDefect(m *Matrix) float64 {
	n := m.N
	max := 0.0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := cmplx.Abs(m.Data[i*n+j] - cmplx.Conj(m.Data[j*n+i]))
			if d > max {
				max = d
			}
		}
	}
	return max
}

func IsHermitian(m *Matrix, tol float64) bool {
	return HermitianDefect(m) <= tol
}

// IsFinite reports whether every entry is free of NaN and Inf.
func (m *Matrix) IsFinite() bool {
	for _, v := range m.Data {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) ||
			math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest entrywise |a-b|.
func MaxAbsDiff(a, b *Matrix) float64 {
	max := 0.0
	for i := range a.Data {
		d := cmplx.Abs(a.Data[i] - b.Data[i])
		if d > max {
			max = d
		}
	}
	return max
}

func SameDim(a, b *Matrix) error {
	if a.N != b.N {
		return fmt.Errorf("dimension mismatch: %d vs %d", a.N, b.N)
	}
	return nil
}
