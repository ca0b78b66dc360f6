// internal/presence/filter.go
package presence

// WindowSize is the number of scan cycles the debouncer remembers.
const WindowSize = 12

// Filter debounces raw per-cycle presence samples. A sample is true when
// the cycle saw at least threshold close devices; the debounced state is
// true while at least half of the remembered samples are true. Pure state
// machine: no IO, no clock.
type Filter struct {
	window    [WindowSize]bool
	next      int
	filled    int
	present   bool
	threshold int
}

func NewFilter(threshold int) *Filter {
	return &Filter{threshold: threshold}
}

// Push records one scan cycle and reports the debounced state along with
// whether this sample flipped it.
func (f *Filter) Push(closeCount int) (changed, present bool) {
	f.window[f.next] = closeCount >= f.threshold
	f.next = (f.next + 1) % WindowSize
	if f.filled < WindowSize {
		f.filled++
	}

	trues := 0
	for i := 0; i < f.filled; i++ {
		if f.window[i] {
			trues++
		}
	}

	// Ratio >= 0.5 of the filled slots, in integer math.
	debounced := trues*2 >= f.filled

	changed = debounced != f.present
	f.present = debounced
	return changed, f.present
}

// Present returns the current debounced state.
func (f *Filter) Present() bool { return f.present }

// SetThreshold changes the close-device count a cycle needs to sample
// true. Applies to subsequent pushes only; recorded samples keep the
// verdict they were taken with.
func (f *Filter) SetThreshold(n int) { f.threshold = n }

func (f *Filter) Threshold() int { return f.threshold }
