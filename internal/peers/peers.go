// Package peers turns a peer comparison table into industry benchmark
// multiples for the comparables method.
package peers

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/montanaflynn/stats"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// ErrNoPeers is returned when there is nothing to benchmark against.
var ErrNoPeers = errors.New("no peers")

// Peer is one row of a peer table. Missing or unparsable cells are 0.
type Peer struct {
	Name     string  `json:"name"`
	EVEBITDA float64 `json:"ev_ebitda"`
	PE       float64 `json:"pe"`
	PEG      float64 `json:"peg"`
}

// Multiples are median peer multiples. A zero field had no usable value.
type Multiples struct {
	EVEBITDA float64 `json:"ev_ebitda"`
	PE       float64 `json:"pe"`
	PEG      float64 `json:"peg"`
	Peers    int     `json:"peers"`
}

type column int

const (
	colUnknown column = iota
	colName
	colEVEBITDA
	colPE
	colPEG
)

// ParseTable reads the first table under #peers, or the first table in the
// document, and maps its Name, EV/EBITDA, P/E and PEG columns.
func ParseTable(r io.Reader) ([]Peer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse peer html: %w", err)
	}

	table := doc.Find("#peers table").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no table found", ErrNoPeers)
	}

	var headers []column
	headerCells := table.Find("thead th")
	if headerCells.Length() == 0 {
		headerCells = table.Find("tr").First().Find("th")
	}
	headerCells.Each(func(_ int, sel *goquery.Selection) {
		headers = append(headers, classify(sel.Text()))
	})
	if !hasColumn(headers, colName) {
		return nil, fmt.Errorf("peer table has no Name column")
	}

	var peers []Peer
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		var p Peer
		cells.Each(func(i int, cell *goquery.Selection) {
			if i >= len(headers) {
				return
			}
			text := strings.TrimSpace(cell.Text())
			switch headers[i] {
			case colName:
				p.Name = text
			case colEVEBITDA:
				p.EVEBITDA = parseMultiple(text)
			case colPE:
				p.PE = parseMultiple(text)
			case colPEG:
				p.PEG = parseMultiple(text)
			}
		})
		if p.Name != "" {
			peers = append(peers, p)
		}
	})

	return peers, nil
}

// Benchmarks returns the median of each multiple over peers with a positive,
// finite value for it.
func Benchmarks(peers []Peer) (Multiples, error) {
	if len(peers) == 0 {
		return Multiples{}, ErrNoPeers
	}

	var ev, pe, peg []float64
	for _, p := range peers {
		if usable(p.EVEBITDA) {
			ev = append(ev, p.EVEBITDA)
		}
		if usable(p.PE) {
			pe = append(pe, p.PE)
		}
		if usable(p.PEG) {
			peg = append(peg, p.PEG)
		}
	}

	return Multiples{
		EVEBITDA: median(ev),
		PE:       median(pe),
		PEG:      median(peg),
		Peers:    len(peers),
	}, nil
}

// Apply overrides the comparable multiples of in that have a benchmark.
func (m Multiples) Apply(in models.ValuationInput) models.ValuationInput {
	if m.EVEBITDA > 0 {
		in.ComparableEVEBITDA = m.EVEBITDA
	}
	if m.PE > 0 {
		in.ComparablePE = m.PE
	}
	if m.PEG > 0 {
		in.ComparablePEG = m.PEG
	}
	return in
}

// --- Internal helpers ---

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m, err := stats.Median(vals)
	if err != nil {
		return 0
	}
	return m
}

func classify(header string) column {
	h := strings.ToLower(strings.Join(strings.Fields(header), ""))
	h = strings.ReplaceAll(h, ".", "")
	switch {
	case h == "name" || h == "company" || h == "companyname":
		return colName
	case strings.Contains(h, "ev/ebitda") || h == "evebitda":
		return colEVEBITDA
	case strings.HasPrefix(h, "peg"):
		return colPEG
	case h == "p/e" || h == "pe" || h == "peratio" || h == "p/eratio":
		return colPE
	}
	return colUnknown
}

func hasColumn(headers []column, c column) bool {
	for _, h := range headers {
		if h == c {
			return true
		}
	}
	return false
}

// parseMultiple reads values like "12.5", "12.5x", "1,234.0" or "–".
// Unparseable and non-finite cells ("Inf", "NaN") read as 0, no value.
func parseMultiple(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "x"), "X")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
