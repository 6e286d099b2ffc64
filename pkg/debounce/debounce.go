// Package debounce - отложенный вызов по заднему фронту с единственным ожидающим значением.
package debounce

import (
	"sync"
	"time"
)

// Debouncer хранит последнее значение и вызывает fn, когда ввод затих на delay.
// Это не очередь: промежуточные значения в окне теряются.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	pending T
	has     bool
	gen     uint64
	closed  bool
}

func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push заменяет ожидающее значение и перезапускает таймер.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.pending = v
	d.has = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending возвращает ещё не отправленное значение.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.has
}

// Flush немедленно отдаёт ожидающее значение, если оно есть.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.has || d.closed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Cancel отбрасывает ожидающее значение.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.take()
}

// Close отменяет ожидание; последующие Push игнорируются.
func (d *Debouncer[T]) Close() {
	d.Cancel()
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// таймер мог сработать уже после Stop: сверяем поколение
	if gen != d.gen || !d.has || d.closed {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	d.fn(v)
}

// take вызывается под мьютексом.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.has = false
	d.gen++
	return v
}
