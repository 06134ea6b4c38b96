// Command liveshark is an offline-first analyzer for show-control
// network captures (Art-Net / sACN). It reads a pcap or pcapng file,
// decodes the lighting-control traffic inside it, and writes a
// versioned JSON report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gopatchy/liveshark/analysis"
	"github.com/gopatchy/liveshark/capture"
	"github.com/gopatchy/liveshark/config"
	"github.com/gopatchy/liveshark/report"
)

func init() {
	log.SetFlags(0)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "analyse", "analyze":
		os.Exit(runAnalyse(os.Args[2:]))
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "liveshark: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `liveshark: offline analyzer for Art-Net / sACN network captures

Usage:
  liveshark analyse <input.pcap|input.pcapng> -o report.json [flags]
  liveshark info <input.pcap|input.pcapng> [flags]

Examples:
  liveshark analyse capture.pcapng -o report.json
  liveshark analyse capture.pcap --stdout --pretty
  liveshark info capture.pcapng --json`)
}

// runAnalyse implements "liveshark analyse", matching flag-for-flag
// the original liveshark-cli's pcap analyse subcommand.
func runAnalyse(args []string) int {
	fs := flag.NewFlagSet("analyse", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (defaults built in if omitted)")
	reportPath := fs.String("o", "", "output report path (JSON)")
	fs.StringVar(reportPath, "report", "", "output report path (JSON)")
	stdout := fs.Bool("stdout", false, "write JSON report to stdout instead of a file")
	pretty := fs.Bool("pretty", false, "pretty-print JSON output")
	compact := fs.Bool("compact", false, "compact JSON output (default)")
	quiet := fs.Bool("quiet", false, "suppress non-error output")
	strict := fs.Bool("strict", false, "exit with a non-zero code if compliance violations are present")
	listViolations := fs.Bool("list-violations", false, "list compliance violations after analysis")
	fs.Parse(args)

	if *pretty && *compact {
		fmt.Fprintln(os.Stderr, "error: cannot use --pretty and --compact together")
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: missing input file")
		return 2
	}

	input, err := resolveInputPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if err := validateInputFile(input); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if !*stdout && *reportPath == "" {
		fmt.Fprintln(os.Stderr, "error: missing report output")
		fmt.Fprintln(os.Stderr, "hint: pass -o/--report <FILE> or use --stdout")
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	rep, err := analyzeFile(cfg, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	data, err := marshalJSON(rep, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if *stdout {
		os.Stdout.Write(data)
		if *listViolations && !*quiet {
			printViolations(rep)
		}
		if *strict && hasViolations(rep) {
			fmt.Fprintln(os.Stderr, "error: compliance violations detected")
			return 1
		}
		return 0
	}

	if err := writeReportAtomically(*reportPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if *listViolations && !*quiet {
		printViolations(rep)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "OK: report written -> %s\n", *reportPath)
	}
	if *strict && hasViolations(rep) {
		fmt.Fprintln(os.Stderr, "error: compliance violations detected")
		return 1
	}
	return 0
}

// runInfo implements "liveshark info": capture metadata only, no
// protocol decoding.
func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "output JSON metadata to stdout")
	pretty := fs.Bool("pretty", false, "pretty-print JSON output")
	compact := fs.Bool("compact", false, "compact JSON output (default)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: missing input file")
		return 2
	}
	input, err := resolveInputPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if err := validateInputFile(input); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	fi, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to read input file: %v\n", err)
		return 2
	}

	src, err := capture.Open(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	defer src.Close()

	var packets uint64
	var firstTS, lastTS *float64
	var linktype string
	for {
		event, err := src.NextPacket()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		if event == nil {
			break
		}
		packets++
		if linktype == "" {
			linktype = event.LinkType.String()
		}
		if event.Ts != nil {
			if firstTS == nil || *event.Ts < *firstTS {
				v := *event.Ts
				firstTS = &v
			}
			if lastTS == nil || *event.Ts > *lastTS {
				v := *event.Ts
				lastTS = &v
			}
		}
	}

	var durationS *float64
	if firstTS != nil && lastTS != nil && *lastTS >= *firstTS {
		d := *lastTS - *firstTS
		durationS = &d
	}

	info := captureInfo{
		Path:        input,
		SizeBytes:   uint64(fi.Size()),
		CaptureType: strings.ToLower(strings.TrimPrefix(filepath.Ext(input), ".")),
		Packets:     packets,
		FirstTS:     tsToRFC3339Ptr(firstTS),
		LastTS:      tsToRFC3339Ptr(lastTS),
		DurationS:   durationS,
		LinkType:    linktype,
	}

	if *asJSON || *pretty || *compact {
		data, err := marshalJSON(info, *pretty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		os.Stdout.Write(data)
		return 0
	}

	fmt.Printf("file: %s\n", info.Path)
	fmt.Printf("format: %s\n", info.CaptureType)
	fmt.Printf("bytes: %d\n", info.SizeBytes)
	fmt.Printf("packets: %d\n", info.Packets)
	fmt.Printf("time_start: %s\n", optionalString(info.FirstTS))
	fmt.Printf("time_end: %s\n", optionalString(info.LastTS))
	if info.DurationS != nil {
		fmt.Printf("duration_s: %v\n", *info.DurationS)
	} else {
		fmt.Printf("duration_s: %v\n", 0.0)
	}
	fmt.Printf("linktype: %s\n", optionalString(&info.LinkType))
	return 0
}

type captureInfo struct {
	Path        string   `json:"path"`
	SizeBytes   uint64   `json:"size_bytes"`
	CaptureType string   `json:"capture_type"`
	Packets     uint64   `json:"packets"`
	FirstTS     *string  `json:"first_ts,omitempty"`
	LastTS      *string  `json:"last_ts,omitempty"`
	DurationS   *float64 `json:"duration_s,omitempty"`
	LinkType    string   `json:"linktype,omitempty"`
}

func optionalString(s *string) string {
	if s == nil || *s == "" {
		return "unknown"
	}
	return *s
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func analyzeFile(cfg *config.Config, input string) (report.Report, error) {
	src, err := capture.Open(input)
	if err != nil {
		return report.Report{}, err
	}
	defer src.Close()

	fi, err := os.Stat(input)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to read input file: %w", err)
	}

	res, err := analysis.Analyze(cfg, src)
	if err != nil {
		return report.Report{}, fmt.Errorf("analysis failed: %w", err)
	}

	return analysis.BuildReport(cfg, input, uint64(fi.Size()), res), nil
}

func marshalJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// writeReportAtomically writes to a temp file in the target directory
// and renames it into place, so a reader never observes a partial
// report.
func writeReportAtomically(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".liveshark-report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %s: %w", path, err)
	}
	return nil
}

func hasViolations(rep report.Report) bool {
	for _, entry := range rep.Compliance {
		if len(entry.Violations) > 0 {
			return true
		}
	}
	return false
}

func printViolations(rep report.Report) {
	entries := append([]report.ComplianceSummary(nil), rep.Compliance...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Protocol < entries[j].Protocol })

	fmt.Fprintln(os.Stderr, "Compliance violations:")
	for _, entry := range entries {
		violations := append([]report.Violation(nil), entry.Violations...)
		sort.Slice(violations, func(i, j int) bool { return violations[i].ID < violations[j].ID })
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  %s %s (%d)\n", entry.Protocol, v.ID, v.Count)
		}
	}
}

func validateInputFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file not found: %s", path)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("input is not a file: %s", path)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "pcap" && ext != "pcapng" {
		return fmt.Errorf("unsupported input format %q (expected .pcap or .pcapng)", path)
	}
	return nil
}

// resolveInputPath expands a glob pattern to a single matching file.
// A literal path with no glob metacharacters passes through unchanged.
func resolveInputPath(pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return "", fmt.Errorf("no files match pattern %q", pattern)
	}
	if len(files) > 1 {
		sort.Strings(files)
		listed := files
		if len(listed) > 3 {
			listed = listed[:3]
		}
		return "", fmt.Errorf("multiple files match pattern %q (%d matches); matches: %s%s",
			pattern, len(files), strings.Join(listed, ", "), extraSuffix(len(files)))
	}
	return files[0], nil
}

func extraSuffix(n int) string {
	if n > 3 {
		return ", ..."
	}
	return ""
}

func tsToRFC3339Ptr(ts *float64) *string {
	if ts == nil {
		return nil
	}
	s := time.Unix(0, int64(*ts*1e9)).UTC().Format(time.RFC3339)
	return &s
}
