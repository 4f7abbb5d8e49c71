package circuit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type route string

const (
	routeBroker   route = "broker"
	routeFallback route = "fallback"
	routeError    route = "error"
)

// deliver records one produce attempt the way the audit Kafka sink does and
// reports where the event ended up.
func deliver(b *Breaker, produced bool) (route, StateChange) {
	if produced {
		_, change := b.RecordSuccess()
		return routeBroker, change
	}
	useFallback, change := b.RecordFailure()
	if useFallback {
		return routeFallback, change
	}
	return routeError, change
}

// outcomes parses a produce history: "+" is an acknowledged record, "x" a
// broker error.
func outcomes(t *testing.T, history string) []bool {
	t.Helper()
	out := make([]bool, 0, len(history))
	for _, c := range history {
		switch c {
		case '+':
			out = append(out, true)
		case 'x':
			out = append(out, false)
		default:
			t.Fatalf("bad history rune %q", c)
		}
	}
	return out
}

func TestAuditSinkDeliverySequences(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		successes int
		history   string
		routes    string
		opened    int
		closed    int
		finalOpen bool
	}{
		{
			name:     "single broker error surfaces to the caller",
			failures: 2, successes: 1,
			history: "x",
			routes:  "error",
		},
		{
			name:     "second consecutive error opens and diverts",
			failures: 2, successes: 1,
			history:   "xxx",
			routes:    "error fallback fallback",
			opened:    1,
			finalOpen: true,
		},
		{
			name:     "acknowledged record between errors keeps the circuit closed",
			failures: 2, successes: 1,
			history: "x+x+x",
			routes:  "error broker error broker error",
		},
		{
			name:     "recovery closes after the success run",
			failures: 2, successes: 2,
			history: "xx++x",
			routes:  "error fallback broker broker error",
			opened:  1,
			closed:  1,
		},
		{
			name:     "flapping broker never completes the success run",
			failures: 1, successes: 3,
			history:   "x++x++",
			routes:    "fallback broker broker fallback broker broker",
			opened:    1,
			finalOpen: true,
		},
		{
			name:     "outage, recovery, second outage",
			failures: 1, successes: 1,
			history: "x+x+",
			routes:  "fallback broker fallback broker",
			opened:  2,
			closed:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("audit-kafka", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))

			var got []string
			opened, closed := 0, 0
			for _, ok := range outcomes(t, tt.history) {
				r, change := deliver(b, ok)
				got = append(got, string(r))
				if change.Opened {
					opened++
				}
				if change.Closed {
					closed++
				}
			}

			assert.Equal(t, tt.routes, strings.Join(got, " "))
			assert.Equal(t, tt.opened, opened, "open transitions")
			assert.Equal(t, tt.closed, closed, "close transitions")
			assert.Equal(t, tt.finalOpen, b.IsOpen())
		})
	}
}

func TestBreakerDefaults(t *testing.T) {
	b := New("audit-kafka", WithFailureThreshold(0), WithSuccessThreshold(-1))
	require.Equal(t, "audit-kafka", b.Name())
	require.Equal(t, StateClosed, b.State())

	for range 4 {
		r, _ := deliver(b, false)
		assert.Equal(t, routeError, r)
	}
	r, change := deliver(b, false)
	assert.Equal(t, routeFallback, r, "the fifth error opens with the default threshold")
	assert.True(t, change.Opened)

	r, _ = deliver(b, true)
	assert.Equal(t, routeBroker, r)
	assert.True(t, b.IsOpen(), "one success is not enough with the default of two")
	_, change = deliver(b, true)
	assert.True(t, change.Closed)
	assert.Equal(t, "closed", b.State().String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
}
