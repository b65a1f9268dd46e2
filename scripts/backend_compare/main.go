// Command backend_compare replays read requests against two running instances of the
// API, typically one on the workbook backend and one on the Postgres cell store after
// an import, and reports where their payloads differ.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target        target
	LeftStatus    int
	RightStatus   int
	StatusMatch   bool
	DataMatch     bool
	Error         error
	LeftDuration  time.Duration
	RightDuration time.Duration
}

var defaultTargets = []target{
	{Path: "/timetable", Critical: true},
	{Path: "/modules", Critical: true},
	{Path: "/periods", Critical: true},
	{Path: "/staff", Critical: true},
	{Path: "/rooms", Critical: true},
	{Path: "/academic-calendar", Critical: true},
	{Path: "/diagnostics"},
}

func main() {
	var (
		leftBase    string
		rightBase   string
		targetsPath string
		module      string
		period      string
		timeout     time.Duration
	)

	flag.StringVar(&leftBase, "left", "http://localhost:8080/api/v1", "Base URL of the reference instance")
	flag.StringVar(&rightBase, "right", "http://localhost:8081/api/v1", "Base URL of the instance under test")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON file of targets; defaults to every read route")
	flag.StringVar(&module, "module", "", "Also compare /modules/sessions for this module")
	flag.StringVar(&period, "period", "", "Teaching period used with -module")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}
	if module != "" {
		query := url.Values{"module": {module}, "period": {period}}
		targets = append(targets, target{Path: "/modules/sessions?" + query.Encode(), Critical: true})
	}

	client := &http.Client{Timeout: timeout}
	var (
		results  []comparison
		breaking int
		minor    int
	)
	for _, t := range targets {
		res := compareTarget(client, leftBase, rightBase, t)
		if res.Error != nil || !res.StatusMatch || !res.DataMatch {
			if t.Critical {
				breaking++
			} else {
				minor++
			}
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	fmt.Printf("Breaking diffs: %d, Minor diffs: %d\n", breaking, minor)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, leftBase, rightBase string, tgt target) comparison {
	res := comparison{Target: tgt}

	leftStatus, leftBody, leftDur, err := fetch(client, leftBase, tgt.Path)
	if err != nil {
		res.Error = fmt.Errorf("left: %w", err)
		return res
	}
	rightStatus, rightBody, rightDur, err := fetch(client, rightBase, tgt.Path)
	if err != nil {
		res.Error = fmt.Errorf("right: %w", err)
		return res
	}

	res.LeftStatus, res.RightStatus = leftStatus, rightStatus
	res.LeftDuration, res.RightDuration = leftDur, rightDur
	res.StatusMatch = leftStatus == rightStatus
	res.DataMatch = payloadsEqual(leftBody, rightBody)
	return res
}

func fetch(client *http.Client, base, path string) (int, []byte, time.Duration, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	start := time.Now()
	resp, err := client.Get(strings.TrimRight(base, "/") + path)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// payloadsEqual compares the data member of two response envelopes. Backend-specific
// diagnostics fields are ignored.
func payloadsEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var left, right map[string]interface{}
	if err := json.Unmarshal(a, &left); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &right); err != nil {
		return false
	}
	leftData, rightData := stripVolatile(left["data"]), stripVolatile(right["data"])
	return reflect.DeepEqual(leftData, rightData)
}

func stripVolatile(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		delete(m, "backend")
	}
	return v
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Backend Compare Report")
	fmt.Fprintln(w, "======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.DataMatch {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] GET %s\n", status, res.Target.Path)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "  Left: %d (%s) | Right: %d (%s)\n", res.LeftStatus, res.LeftDuration, res.RightStatus, res.RightDuration)
		fmt.Fprintf(w, "  Status match: %t | Data match: %t | Critical: %t\n", res.StatusMatch, res.DataMatch, res.Target.Critical)
	}
}
