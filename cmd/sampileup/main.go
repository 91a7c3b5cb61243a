//
// Copyright (C) 2026 the sampileup authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bioseqio/sampileup/lib/align"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s) for BAM decompression")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathSAMsRaw, pathBAMsRaw, rawSAMCmdIn, regionsRaw string
	var subsample int
	flag.StringVar(&pathSAMsRaw, "path_sam", "", "Path to SAM file(s), plain or gzipped (comma separated)")
	flag.StringVar(&pathBAMsRaw, "path_bam", "", "Path to BAM file(s) (comma separated)")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	flag.StringVar(&regionsRaw, "regions", "", "Only pile up reads overlapping region(s) 'name:start-end' (comma separated)")
	flag.IntVar(&subsample, "subsample", 0, "Draw every nth read only")
	// Arguments: Pileup
	var minQualRaw string
	var withCounts bool
	flag.StringVar(&minQualRaw, "min_qual", "!", "Minimum encoded base quality character for an observation to count")
	flag.BoolVar(&withCounts, "counts", false, "Append per-base counts for A/C/T/G/N/- to each pileup line")
	// Arguments: Output
	var pathPileup, pileupZip, pathStats, pathSAMOut string
	flag.StringVar(&pathPileup, "path_pileup", "pileup.tsv", "Path to pileup output (stdout with -)")
	flag.StringVar(&pileupZip, "pileup_zip", "", "Compress pileup output: 'lz4' or 'lz4hc'")
	flag.StringVar(&pathStats, "path_stats", "", "Path to mismatch statistics output")
	flag.StringVar(&pathSAMOut, "path_sam_out", "", "Path to output SAM file to save piled-up reads")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Time start
	var timeStart time.Time
	if verboseLevel > 0 {
		timeStart = time.Now()
	}

	// Parse raw arguments
	// inputs
	var inputs []PathInput
	var samCmdIn []string
	if len(pathSAMsRaw) > 0 {
		for _, p := range strings.Split(pathSAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			} else {
				inputs = append(inputs, PathInput{Path: p, Binary: false})
			}
		}
		if len(rawSAMCmdIn) > 0 {
			samCmdIn = strings.Split(rawSAMCmdIn, ",")
		}
	}
	if len(pathBAMsRaw) > 0 {
		for _, p := range strings.Split(pathBAMsRaw, ",") {
			if _, err := os.Stat(p); os.IsNotExist(err) {
				log.Fatalln(p, "not found")
			} else {
				inputs = append(inputs, PathInput{Path: p, Binary: true})
			}
		}
	}
	if len(inputs) == 0 {
		log.Fatal("No SAM/BAM input")
	}
	// minQual
	if len(minQualRaw) != 1 {
		log.Fatal("min_qual must be a single quality character")
	}
	minQual := minQualRaw[0]
	// regions
	var regions []align.Region
	if len(regionsRaw) > 0 {
		for _, s := range strings.Split(regionsRaw, ",") {
			rg, err := align.ParseRegion(s)
			if err != nil {
				log.Fatal(err)
			}
			regions = append(regions, rg)
		}
	}
	// pileupZip
	if pileupZip != "" && pileupZip != "lz4" && pileupZip != "lz4hc" {
		log.Fatalln("Unknown pileup_zip", pileupZip)
	}

	// Pile up alignments
	nAlign, err := RunPileup(inputs, samCmdIn, regions, minQual, subsample, withCounts, pathPileup, pileupZip, pathStats, pathSAMOut, pathReport, nWorker, timeStart, verboseLevel)
	if err != nil {
		log.Fatal(err)
	}

	// Verbose
	if verboseLevel > 0 {
		timeEnd := time.Now()
		fmt.Printf("%.1fmin - Done %d align.\n", timeEnd.Sub(timeStart).Minutes(), nAlign)
	}
}
