//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/biogo/hts/bam"
	"github.com/biogo/store/interval"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"golang.org/x/sync/errgroup"

	"gopkg.in/fatih/set.v0"

	"github.com/bioseqio/sampileup/lib/align"
	"github.com/bioseqio/sampileup/lib/pileup"
)

const recBatchLength = 64

// PathInput stores the path to a SAM (Binary=false) or BAM (Binary=true)
// file.
type PathInput struct {
	Path   string
	Binary bool
}

type recordReader interface {
	Read() (*align.Record, error)
}

type bamRecordReader struct {
	rr *bam.Reader
}

func (b bamRecordReader) Read() (*align.Record, error) {
	rec, err := b.rr.Read()
	if err != nil {
		return nil, err
	}
	return align.FromSAM(rec)
}

// OpenInput opens one input for record streaming. The returned closers are
// nil when unused.
func OpenInput(in PathInput, cmd []string, nWorker int) (f *os.File, pp io.ReadCloser, rr recordReader, err error) {
	if in.Binary {
		f, err = os.Open(in.Path)
		if err != nil {
			return f, pp, rr, err
		}
		br, err := bam.NewReader(f, nWorker)
		if err != nil {
			return f, pp, rr, err
		}
		return f, pp, bamRecordReader{rr: br}, nil
	}
	if len(cmd) > 0 {
		cmd = append(cmd, in.Path)
		p := exec.Command(cmd[0], cmd[1:]...)
		if pp, err = p.StdoutPipe(); err != nil {
			return f, pp, rr, err
		}
		if err = p.Start(); err != nil {
			return f, pp, rr, err
		}
		rr, err = align.NewReader(pp)
		return f, pp, rr, err
	}
	f, err = os.Open(in.Path)
	if err != nil {
		return f, pp, rr, err
	}
	var rd io.Reader = f
	if strings.HasSuffix(in.Path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return f, pp, rr, err
		}
		pp = gz
		rd = gz
	}
	rr, err = align.NewReader(rd)
	return f, pp, rr, err
}

// GetHeader reads only the header of an input.
func GetHeader(in PathInput, cmd []string) (*align.Header, error) {
	f, pp, rr, err := OpenInput(in, cmd, 1)
	if err != nil {
		return nil, err
	}
	defer func() {
		if pp != nil {
			pp.Close()
		}
		if f != nil {
			f.Close()
		}
	}()
	switch r := rr.(type) {
	case bamRecordReader:
		return align.FromSAMHeader(r.rr.Header())
	case *align.Reader:
		return r.Header, nil
	}
	return nil, fmt.Errorf("unknown reader for %s", in.Path)
}

// GenericWriter is a closable byte sink for plain or compressed output.
type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloseWriter struct {
	io.Writer
}

func (nopCloseWriter) Close() error { return nil }

func openPileupOutput(path, zip string) (GenericWriter, *os.File, error) {
	var f *os.File
	var base io.Writer
	if path == "-" {
		base = os.Stdout
	} else {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return nil, nil, err
		}
		base = f
	}
	switch zip {
	case "lz4":
		return lz4.NewWriter(base), f, nil
	case "lz4hc":
		lzWriter := lz4.NewWriter(base)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		return lzWriter, f, nil
	default:
		return nopCloseWriter{base}, f, nil
	}
}

// RunPileup streams sorted records from the inputs through the accumulator
// and writes pileup lines as columns fall out of the active window.
func RunPileup(inputs []PathInput, samCmdIn []string, regions []align.Region, minQual byte, subsample int, withCounts bool, pathPileup, pileupZip, pathStats, pathSAMOut, pathReport string, nWorker int, timeStart time.Time, verboseLevel int) (nAlign uint64, err error) {
	// Region trees
	var trees map[string]*interval.IntTree
	if len(regions) > 0 {
		trees, err = align.BuildRegionTrees(regions)
		if err != nil {
			return nAlign, err
		}
	}

	// Open pileup output
	out, outFile, err := openPileupOutput(pathPileup, pileupZip)
	if err != nil {
		return nAlign, err
	}

	// Open output SAM
	var doOutSAM bool
	var samWriter *align.Writer
	var samOutFile *os.File
	if pathSAMOut != "" {
		header, err := GetHeader(inputs[0], samCmdIn)
		if err != nil {
			return nAlign, err
		}
		samOutFile, err = os.Create(pathSAMOut)
		if err != nil {
			return nAlign, err
		}
		defer samOutFile.Close()
		samWriter, err = align.NewWriter(samOutFile, header)
		if err != nil {
			return nAlign, err
		}
		doOutSAM = true
	}

	// Init context
	ctx := context.Background()
	// Start sync errgroup
	g, gctx := errgroup.WithContext(ctx)

	// Start record channel
	chRec := make(chan []*align.Record, nWorker*10)

	g.Go(func() error {
		defer close(chRec)
		var nRead uint64
		for _, in := range inputs {
			if verboseLevel > 0 {
				timeNow := time.Now()
				fmt.Printf("%.1fmin - Opening %s\n", timeNow.Sub(timeStart).Minutes(), in.Path)
			}
			f, pp, rr, err := OpenInput(in, samCmdIn, nWorker)
			if err != nil {
				return err
			}
			sRec := make([]*align.Record, 0, recBatchLength)
			for {
				rec, err := rr.Read()
				if err == io.EOF {
					break
				} else if err != nil {
					return err
				}
				drawn := subsample <= 1 || nRead%uint64(subsample) == 0
				nRead++
				if !drawn {
					continue
				}
				sRec = append(sRec, rec)
				if len(sRec) == recBatchLength {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case chRec <- sRec:
					}
					sRec = make([]*align.Record, 0, recBatchLength)
				}
			}
			if pp != nil {
				pp.Close()
			}
			if f != nil {
				f.Close()
			}
			// Send last batch
			if len(sRec) > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case chRec <- sRec:
				}
			}
		}
		return nil
	})

	// Pileup state: one consumer owns the accumulator.
	acc := pileup.NewAccumulator()
	var stats *pileup.Stats
	if pathStats != "" {
		stats = pileup.NewStats()
	}
	readNames := set.New(set.NonThreadSafe)
	var nIngested, nUnmapped, nDuplicate, nSecondary, nNoSeq, nOutside, nColumns uint64

	writeRows := func(rows []pileup.Row) error {
		for _, row := range rows {
			if _, err := fmt.Fprintf(out, "%s\t%d\t%c\t%d\t%d\t%s\t%s", row.Ref, row.Pos, row.RefBase, row.Match, row.Mismatch, row.MismatchBases, row.MismatchQuals); err != nil {
				return err
			}
			if withCounts {
				for _, n := range row.BaseCounts {
					if _, err := fmt.Fprintf(out, "\t%d", n); err != nil {
						return err
					}
				}
			}
			if _, err := fmt.Fprintf(out, "\n"); err != nil {
				return err
			}
			if stats != nil {
				stats.Add(row)
			}
			nColumns++
		}
		return nil
	}

	consume := func() error {
		var curRef string
		var lastPos int
		timeLog := time.Now()
		for sRec := range chRec {
			for _, rec := range sRec {
				nAlign++
				if verboseLevel > 0 {
					timeNow := time.Now()
					if timeNow.Sub(timeLog).Minutes() > 1. {
						fmt.Printf("%.1fmin - %d align.\n", timeNow.Sub(timeStart).Minutes(), nAlign)
						timeLog = timeNow
					}
				}
				// Read filtering
				if !rec.Mapped() {
					nUnmapped++
					continue
				}
				if rec.Duplicate() {
					nDuplicate++
					continue
				}
				if rec.Secondary() {
					nSecondary++
					continue
				}
				if rec.Seq == "*" {
					nNoSeq++
					continue
				}
				if trees != nil {
					ok, err := rec.OverlapsRegion(trees)
					if err != nil {
						return err
					}
					if !ok {
						nOutside++
						continue
					}
				}
				// Columns on a previous reference can receive no
				// further contributions.
				if rec.Ref != curRef {
					if err := writeRows(acc.Flush()); err != nil {
						return err
					}
					curRef = rec.Ref
					lastPos = 0
				} else if rec.Pos < lastPos {
					return fmt.Errorf("input not sorted: %s at %s:%d after position %d", rec.Name, rec.Ref, rec.Pos, lastPos)
				}
				lastPos = rec.Pos
				if err := writeRows(acc.Evict(rec.Pos)); err != nil {
					return err
				}
				if err := acc.Ingest(rec, minQual); err != nil {
					return err
				}
				nIngested++
				readNames.Add(rec.SafeName())
				if doOutSAM {
					if err := samWriter.Write(rec); err != nil {
						return err
					}
				}
			}
		}
		return writeRows(acc.Flush())
	}

	if err = consume(); err != nil {
		return nAlign, err
	}
	if err = g.Wait(); err != nil {
		return nAlign, err
	}
	if err = out.Close(); err != nil {
		return nAlign, err
	}
	if outFile != nil {
		if err = outFile.Close(); err != nil {
			return nAlign, err
		}
	}

	// Output: Statistics
	if stats != nil {
		f, err := os.Create(pathStats)
		if err != nil {
			return nAlign, err
		}
		if err = stats.WriteTo(f); err != nil {
			f.Close()
			return nAlign, err
		}
		if err = f.Close(); err != nil {
			return nAlign, err
		}
	}

	// Output: Report
	if pathReport != "" {
		counts := map[string]uint64{
			"align_total":           nAlign,
			"align_ingested":        nIngested,
			"align_unmapped":        nUnmapped,
			"align_duplicate":       nDuplicate,
			"align_secondary":       nSecondary,
			"align_no_seq":          nNoSeq,
			"align_outside_regions": nOutside,
			"read_distinct":         uint64(readNames.Size()),
			"column_emitted":        nColumns,
		}
		if err = WriteReport(pathReport, counts); err != nil {
			return nAlign, err
		}
	}

	return nAlign, nil
}
