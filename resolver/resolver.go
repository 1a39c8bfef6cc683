// Package resolver extracts registrable domains from hostnames.
//
// The matcher tries the last two labels of a hostname as a public suffix,
// then the last label alone. It does not support wildcard or exception
// rules and does not normalize internationalized names.
package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when the hostname is empty
	// or no registry is provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoDots is returned for hostnames made of a single label.
	ErrNoDots = fmt.Errorf("%w: hostname has no dots", ErrInvalidArgument)

	// ErrUnrecognizedDomain is returned when no registered suffix
	// matches the hostname at either level.
	ErrUnrecognizedDomain = errors.New("unrecognized domain")

	// ErrShortBuffer is returned by [ResolveInto] when the domain
	// does not fit in the buffer.
	ErrShortBuffer = errors.New("buffer too small for domain")
)

// Registry reports whether a suffix is a registered public suffix.
type Registry interface {
	Contains(suffix string) bool
}

// Match describes how a registrable domain was found.
type Match uint8

const (
	// MatchWhole means the hostname has exactly one dot and was
	// returned as is, without consulting the registry.
	MatchWhole Match = iota

	// MatchTwoLevel means the last two labels are a registered suffix.
	MatchTwoLevel

	// MatchOneLevel means only the last label is a registered suffix.
	MatchOneLevel
)

// String implements [fmt.Stringer].
func (m Match) String() string {
	switch m {
	case MatchWhole:
		return "whole"
	case MatchTwoLevel:
		return "two-level"
	case MatchOneLevel:
		return "one-level"
	default:
		return fmt.Sprintf("Match(%d)", m)
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (m Match) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Result is the outcome of a successful lookup.
// Domain and Suffix are substrings of the hostname.
type Result struct {
	Domain string `json:"domain"`
	Suffix string `json:"suffix,omitempty"`
	Match  Match  `json:"match"`
}

// Lookup finds the registrable domain of hostname.
//
// A hostname with exactly one dot is its own registrable domain.
// Otherwise, if the last two labels form a registered suffix, the result
// is that suffix preceded by one more label, or the whole hostname when
// there is none. If only the last label is registered, the result is the
// last two labels.
func Lookup(hostname string, r Registry) (Result, error) {
	if hostname == "" || r == nil {
		return Result{}, ErrInvalidArgument
	}

	// Positions of the last three dots, rightmost first.
	var (
		dots  [3]int
		count int
	)
	for i := len(hostname) - 1; i >= 0; i-- {
		if hostname[i] != '.' {
			continue
		}
		if count < len(dots) {
			dots[count] = i
		}
		count++
	}

	switch count {
	case 0:
		return Result{}, ErrNoDots
	case 1:
		return Result{Domain: hostname, Match: MatchWhole}, nil
	}

	last2 := hostname[dots[1]+1:]
	if r.Contains(last2) {
		domain := hostname
		if count > 2 {
			domain = hostname[dots[2]+1:]
		}
		return Result{Domain: domain, Suffix: last2, Match: MatchTwoLevel}, nil
	}

	last1 := hostname[dots[0]+1:]
	if r.Contains(last1) {
		return Result{Domain: last2, Suffix: last1, Match: MatchOneLevel}, nil
	}

	return Result{}, ErrUnrecognizedDomain
}

// Resolve returns the registrable domain of hostname.
// The returned string shares memory with hostname.
func Resolve(hostname string, r Registry) (string, error) {
	res, err := Lookup(hostname, r)
	if err != nil {
		return "", err
	}
	return res.Domain, nil
}

// AppendResolve appends the registrable domain of hostname to dst
// and returns the extended slice. On error, dst is returned unchanged.
func AppendResolve(dst []byte, hostname string, r Registry) ([]byte, error) {
	domain, err := Resolve(hostname, r)
	if err != nil {
		return dst, err
	}
	return append(dst, domain...), nil
}

// ResolveInto copies the registrable domain of hostname into buf
// and returns the number of bytes written.
//
// If the domain is longer than buf, nothing is written and
// [ErrShortBuffer] is returned.
func ResolveInto(buf []byte, hostname string, r Registry) (int, error) {
	domain, err := Resolve(hostname, r)
	if err != nil {
		return 0, err
	}
	if len(domain) > len(buf) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, len(domain), len(buf))
	}
	return copy(buf, domain), nil
}

