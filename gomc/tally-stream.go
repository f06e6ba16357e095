package gomc

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// TallyStream is a stage in a pipeline of PairTally values.
// Each stage owns a goroutine that drains the previous stage and closes its own Outlet when done.
type TallyStream struct {
	Outlet chan PairTally
}

// StreamTallies emits the given tallies in order and then closes.
func StreamTallies(tallies []PairTally) *TallyStream {
	next := &TallyStream{
		Outlet: make(chan PairTally, 1),
	}

	go func() {
		for _, PT := range tallies {
			next.Outlet <- PT
		}
		next.Close()
	}()

	return next
}

func (stream *TallyStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// PullAll drains the stream and returns how many tallies passed through.
func (stream *TallyStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream into a slice.
func (stream *TallyStream) Collect() []PairTally {
	var all []PairTally
	for PT := range stream.Outlet {
		all = append(all, PT)
	}
	return all
}

// SelectOrientable passes only tallies without one-sided components.
func (stream *TallyStream) SelectOrientable() *TallyStream {
	next := &TallyStream{
		Outlet: make(chan PairTally, 1),
	}

	go func() {
		for PT := range stream.Outlet {
			if PT.Orientable() {
				next.Outlet <- PT
			}
		}
		next.Close()
	}()

	return next
}

// AddTo offers each tally to target and passes along only those that were newly added.
func (stream *TallyStream) AddTo(target TallyAdder) *TallyStream {
	next := &TallyStream{
		Outlet: make(chan PairTally, 1),
	}

	go func() {
		for PT := range stream.Outlet {
			if target.TryAddTally(PT) {
				next.Outlet <- PT
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams the tallies stored in cat.
func SelectFromCatalog(cat Catalog, orientableOnly bool) *TallyStream {
	next := &TallyStream{
		Outlet: make(chan PairTally, 1),
	}

	onHit := make(chan PairTally, 4)

	go func() {
		cat.Select(orientableOnly, onHit)
		close(onHit)
	}()

	go func() {
		for PT := range onHit {
			next.Outlet <- PT
		}
		next.Close()
	}()

	return next
}

// Print writes each tally to out as it passes through, closing out when the stream ends.
func (stream *TallyStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *TallyStream {

	next := &TallyStream{
		Outlet: make(chan PairTally, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for PT := range stream.Outlet {
			count++
			if opts.Format == FormatYAML {
				writeYAML(&buf, PT, opts)
			} else {
				writeText(&buf, PT, count, opts)
			}
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- PT
		}
		out.Close()
		next.Close()
	}()

	return next
}

func writeText(buf *strings.Builder, PT PairTally, count int, opts PrintOpts) {
	if len(opts.Label) > 0 {
		buf.WriteString(opts.Label)
		buf.WriteByte(',')
	}
	fmt.Fprintf(buf, "%06d,%d,%d", count, PT.M, PT.N)
	if !opts.Pairs {
		fmt.Fprintf(buf, ",%d,%d", PT.TwoSided, PT.OneSided)
	}
	buf.WriteByte('\n')
}

// yamlEntry is one list item of a yaml report; yaml.v3 emits a single-item sequence per call so the
// concatenated output reads as one document-level list.
type yamlEntry struct {
	Label    string `yaml:"label,omitempty"`
	M        int    `yaml:"m"`
	N        int    `yaml:"n"`
	TwoSided *int   `yaml:"two_sided,omitempty"`
	OneSided *int   `yaml:"one_sided,omitempty"`
}

func writeYAML(buf *strings.Builder, PT PairTally, opts PrintOpts) {
	entry := yamlEntry{
		Label: opts.Label,
		M:     PT.M,
		N:     PT.N,
	}
	if !opts.Pairs {
		entry.TwoSided = &PT.TwoSided
		entry.OneSided = &PT.OneSided
	}
	enc, err := yaml.Marshal([]yamlEntry{entry})
	if err != nil {
		panic(err)
	}
	buf.Write(enc)
}
