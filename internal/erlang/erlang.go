// Package erlang implements the Erlang B and Erlang C traffic formulas and
// the staffing calculations built on top of them (service level, average
// speed of answer, minimum-agent searches, occupancy).
//
// All functions are pure and safe for concurrent use. Time-valued inputs
// (handle time, interval length, wait time) must share one unit; that is a
// caller contract, only signs are validated here.
package erlang

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput indicates a parameter outside its domain
	// (non-positive where positive is required, goal outside [0,1], ...).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnstable indicates the queue stability condition is violated:
	// the offered intensity meets or exceeds the number of agents, so the
	// queue grows without bound and delay metrics are undefined.
	ErrUnstable = errors.New("unstable queue")

	// ErrSearchExhausted indicates an inverse staffing search hit its
	// iteration bound without reaching the target.
	ErrSearchExhausted = errors.New("staffing search exhausted")
)

// DefaultSearchSpan bounds the inverse staffing searches: candidates run
// from the smallest integer exceeding A through DefaultSearchSpan values.
// Targets that cannot be met by then (e.g. a service level goal of exactly
// 1.0, which finite staffing only approaches) fail with ErrSearchExhausted
// instead of looping forever.
const DefaultSearchSpan = 10000

// Intensity converts raw call volume into offered traffic in Erlangs:
// arrivalRate calls per interval, each occupying an agent for avgHandleTime.
// avgHandleTime and intervalLength must share a time unit.
func Intensity(arrivalRate, avgHandleTime, intervalLength float64) (float64, error) {
	if arrivalRate <= 0 {
		return 0, fmt.Errorf("%w: arrival rate must be positive, got %v", ErrInvalidInput, arrivalRate)
	}
	if avgHandleTime <= 0 {
		return 0, fmt.Errorf("%w: average handle time must be positive, got %v", ErrInvalidInput, avgHandleTime)
	}
	if intervalLength <= 0 {
		return 0, fmt.Errorf("%w: interval length must be positive, got %v", ErrInvalidInput, intervalLength)
	}

	return arrivalRate * avgHandleTime / intervalLength, nil
}

// ErlangB returns the blocking probability of an M/M/N/N loss system:
// the steady-state probability that a call arrives while all servers are
// busy and is lost. Evaluated with the forward recurrence
//
//	B(0) = 1
//	B(k) = A*B(k-1) / (k + A*B(k-1))
//
// which keeps every intermediate value in [0,1] and never materializes a
// factorial or power, so it stays exact for server counts in the hundreds
// where the direct A^N/N! form overflows.
func ErlangB(servers int, intensity float64) (float64, error) {
	if servers < 0 {
		return 0, fmt.Errorf("%w: server count must be non-negative, got %d", ErrInvalidInput, servers)
	}
	if intensity < 0 {
		return 0, fmt.Errorf("%w: intensity must be non-negative, got %v", ErrInvalidInput, intensity)
	}

	b := 1.0
	for k := 1; k <= servers; k++ {
		b = intensity * b / (float64(k) + intensity*b)
	}
	return b, nil
}

// ErlangC returns the probability that an arriving call finds all agents
// busy and must wait, under the M/M/N queueing model. It is derived from
// Erlang B through the algebraic transform
//
//	C = N*B / (N - A*(1-B))
//
// which inherits the numerical stability of the Erlang B recurrence.
// Requires intensity < agents; otherwise the queue is unstable.
func ErlangC(agents int, intensity float64) (float64, error) {
	if agents <= 0 {
		return 0, fmt.Errorf("%w: agent count must be positive, got %d", ErrInvalidInput, agents)
	}
	if intensity < 0 {
		return 0, fmt.Errorf("%w: intensity must be non-negative, got %v", ErrInvalidInput, intensity)
	}
	if intensity >= float64(agents) {
		return 0, fmt.Errorf("%w: intensity %v >= agents %d", ErrUnstable, intensity, agents)
	}
	if intensity == 0 {
		return 0, nil
	}

	b, err := ErlangB(agents, intensity)
	if err != nil {
		return 0, err
	}

	n := float64(agents)
	return n * b / (n - intensity*(1-b)), nil
}

// ServiceLevel returns the probability that a call is answered within
// waitTime: 1 - C * exp(-(N-A) * waitTime / AHT).
func ServiceLevel(agents int, arrivalRate, avgHandleTime, intervalLength, waitTime float64) (float64, error) {
	if waitTime < 0 {
		return 0, fmt.Errorf("%w: wait time must be non-negative, got %v", ErrInvalidInput, waitTime)
	}

	a, err := Intensity(arrivalRate, avgHandleTime, intervalLength)
	if err != nil {
		return 0, err
	}

	c, err := ErlangC(agents, a)
	if err != nil {
		return 0, err
	}

	return 1 - c*math.Exp(-(float64(agents)-a)*waitTime/avgHandleTime), nil
}

// AvgWaitTime returns the average speed of answer: the expected delay over
// all calls, including those answered immediately. Same unit as avgHandleTime.
func AvgWaitTime(agents int, arrivalRate, avgHandleTime, intervalLength float64) (float64, error) {
	a, err := Intensity(arrivalRate, avgHandleTime, intervalLength)
	if err != nil {
		return 0, err
	}

	c, err := ErlangC(agents, a)
	if err != nil {
		return 0, err
	}

	return c * avgHandleTime / (float64(agents) - a), nil
}

// AgentsForServiceLevel returns the smallest agent count whose service level
// within waitTime meets or exceeds goal. The search starts at floor(A)+1, the
// smallest integer strictly above A and hence the smallest stable staffing,
// and increments; service level is non-decreasing in the agent count for
// fixed load, so the first hit is the minimum.
func AgentsForServiceLevel(arrivalRate, avgHandleTime, intervalLength, waitTime, goal float64) (int, error) {
	if goal < 0 || goal > 1 {
		return 0, fmt.Errorf("%w: service level goal must be in [0,1], got %v", ErrInvalidInput, goal)
	}
	if waitTime < 0 {
		return 0, fmt.Errorf("%w: wait time must be non-negative, got %v", ErrInvalidInput, waitTime)
	}

	// A goal of exactly 1 is approached asymptotically, never attained for
	// finite staffing. The computed level still rounds to 1 once the
	// queueing term underflows, so the loop cannot be trusted to reject it.
	if goal == 1 {
		return 0, fmt.Errorf("%w: a service level of exactly 1 is unattainable with finite agents", ErrSearchExhausted)
	}

	a, err := Intensity(arrivalRate, avgHandleTime, intervalLength)
	if err != nil {
		return 0, err
	}

	start := int(math.Floor(a)) + 1
	for n := start; n < start+DefaultSearchSpan; n++ {
		sl, err := ServiceLevel(n, arrivalRate, avgHandleTime, intervalLength, waitTime)
		if err != nil {
			return 0, err
		}
		if sl >= goal {
			return n, nil
		}
	}

	return 0, fmt.Errorf("%w: no staffing within %d agents reaches service level %v",
		ErrSearchExhausted, start+DefaultSearchSpan-1, goal)
}

// AgentsForASA returns the smallest agent count whose average speed of
// answer is at or below targetASA. Average wait is non-increasing in the
// agent count, so the incremental search terminates at the minimum.
func AgentsForASA(arrivalRate, avgHandleTime, intervalLength, targetASA float64) (int, error) {
	if targetASA < 0 {
		return 0, fmt.Errorf("%w: target average wait must be non-negative, got %v", ErrInvalidInput, targetASA)
	}
	// Some delay is always incurred while any queueing probability remains,
	// so a target of exactly zero cannot be met. Reject it up front; the
	// computed wait rounds to zero once the queueing term underflows.
	if targetASA == 0 {
		return 0, fmt.Errorf("%w: a zero average wait is unattainable with finite agents", ErrSearchExhausted)
	}

	a, err := Intensity(arrivalRate, avgHandleTime, intervalLength)
	if err != nil {
		return 0, err
	}

	start := int(math.Floor(a)) + 1
	for n := start; n < start+DefaultSearchSpan; n++ {
		asa, err := AvgWaitTime(n, arrivalRate, avgHandleTime, intervalLength)
		if err != nil {
			return 0, err
		}
		if asa <= targetASA {
			return n, nil
		}
	}

	return 0, fmt.Errorf("%w: no staffing within %d agents reaches average wait %v",
		ErrSearchExhausted, start+DefaultSearchSpan-1, targetASA)
}

// Occupancy returns the fraction of agent capacity consumed by the offered
// intensity. Values above 1 signal an infeasible staffing level; stability
// is deliberately not enforced here, this is a reporting ratio.
func Occupancy(agents int, intensity float64) (float64, error) {
	if agents <= 0 {
		return 0, fmt.Errorf("%w: agent count must be positive, got %d", ErrInvalidInput, agents)
	}
	if intensity < 0 {
		return 0, fmt.Errorf("%w: intensity must be non-negative, got %v", ErrInvalidInput, intensity)
	}

	return intensity / float64(agents), nil
}
