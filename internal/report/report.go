package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/signalnine/puzzlebench/internal/executil"
	"github.com/signalnine/puzzlebench/internal/stats"
)

// Summary is the reduced description of one solution's run or
// benchmark. Duration fields serialize as integer nanoseconds, so a
// rendered report decodes back without loss. Field names are stable
// API for external tooling.
type Summary struct {
	Project     string        `json:"project"`
	Solution    string        `json:"solution"`
	Status      string        `json:"status"`
	Answer      string        `json:"answer,omitempty"`
	Error       string        `json:"error,omitempty"`
	Benchmarked bool          `json:"benchmarked"`
	Iterations  int           `json:"iterations"`
	Min         time.Duration `json:"min_ns,omitempty"`
	Max         time.Duration `json:"max_ns,omitempty"`
	Mean        time.Duration `json:"mean_ns,omitempty"`
	Median      time.Duration `json:"median_ns,omitempty"`
	Stdev       time.Duration `json:"stdev_ns,omitempty"`
	P95         time.Duration `json:"p95_ns,omitempty"`
	P99         time.Duration `json:"p99_ns,omitempty"`
	Total       time.Duration `json:"total_ns,omitempty"`
}

func (s Summary) ID() string {
	return s.Project + "/" + s.Solution
}

func (s Summary) OK() bool {
	return s.Status == string(executil.StatusOK)
}

// Measured builds a benchmarked Summary from a duration sample.
func Measured(project, solution, answer string, durations []time.Duration) Summary {
	sample := stats.Summarize(durations)
	return Summary{
		Project:     project,
		Solution:    solution,
		Status:      string(executil.StatusOK),
		Answer:      answer,
		Benchmarked: true,
		Iterations:  sample.Count,
		Min:         sample.Min,
		Max:         sample.Max,
		Mean:        sample.Mean,
		Median:      sample.Median,
		Stdev:       sample.Stdev,
		P95:         sample.P95,
		P99:         sample.P99,
		Total:       sample.Total,
	}
}

// SingleRun builds a Summary from one plain invocation: a single
// duration, no variance statistics.
func SingleRun(project, solution string, o *executil.Outcome) Summary {
	s := Summary{
		Project:  project,
		Solution: solution,
		Status:   string(o.Status),
		Error:    o.Err,
	}
	if o.OK() {
		s.Answer = o.Answer()
		s.Iterations = 1
		s.Min = o.Duration
		s.Max = o.Duration
		s.Mean = o.Duration
		s.Median = o.Duration
		s.Total = o.Duration
	}
	return s
}

// Failed builds a Summary for a solution whose benchmark could not be
// completed. No statistics fields are populated.
func Failed(project, solution, status, detail string) Summary {
	return Summary{
		Project:  project,
		Solution: solution,
		Status:   status,
		Error:    detail,
	}
}

// Rollup aggregates a set of summaries. Failed solutions count toward
// Failures only; their zero statistics never contribute to totals.
type Rollup struct {
	Solutions   int           `json:"solutions"`
	Failures    int           `json:"failures"`
	TotalMean   time.Duration `json:"total_mean_ns"`
	Slowest     string        `json:"slowest,omitempty"`
	SlowestMean time.Duration `json:"slowest_mean_ns,omitempty"`
}

func (r *Rollup) add(s Summary) {
	r.Solutions++
	if !s.OK() {
		r.Failures++
		return
	}
	r.TotalMean += s.Mean
	if s.Mean > r.SlowestMean || r.Slowest == "" {
		r.Slowest = s.ID()
		r.SlowestMean = s.Mean
	}
}

// ProjectRollup is the per-project aggregate.
type ProjectRollup struct {
	Project string `json:"project"`
	Rollup
}

// Report is the global aggregate: every solution summary plus
// per-project and total roll-ups. Summaries are kept sorted by project
// and solution, so the same set of summaries produces an identical
// report no matter what order they arrive in.
type Report struct {
	Solutions  []Summary       `json:"solutions"`
	Projects   []ProjectRollup `json:"projects"`
	Total      Rollup          `json:"total"`
	Incomplete bool            `json:"incomplete,omitempty"`
}

// Add records a completed solution summary and refreshes the roll-ups.
func (r *Report) Add(s Summary) {
	idx := sort.Search(len(r.Solutions), func(i int) bool {
		a := r.Solutions[i]
		if a.Project != s.Project {
			return a.Project > s.Project
		}
		return a.Solution >= s.Solution
	})
	r.Solutions = append(r.Solutions, Summary{})
	copy(r.Solutions[idx+1:], r.Solutions[idx:])
	r.Solutions[idx] = s
	r.rollup()
}

// Merge combines two reports over disjoint solution sets. Merging is
// associative and order-independent.
func Merge(a, b *Report) *Report {
	merged := &Report{Incomplete: a.Incomplete || b.Incomplete}
	merged.Solutions = make([]Summary, 0, len(a.Solutions)+len(b.Solutions))
	merged.Solutions = append(merged.Solutions, a.Solutions...)
	merged.Solutions = append(merged.Solutions, b.Solutions...)
	sort.Slice(merged.Solutions, func(i, j int) bool {
		x, y := merged.Solutions[i], merged.Solutions[j]
		if x.Project != y.Project {
			return x.Project < y.Project
		}
		return x.Solution < y.Solution
	})
	merged.rollup()
	return merged
}

// rollup recomputes the per-project and total aggregates from the
// sorted summaries. Deriving them from scratch keeps aggregation
// order-independent.
func (r *Report) rollup() {
	r.Projects = r.Projects[:0]
	r.Total = Rollup{}
	for _, s := range r.Solutions {
		if len(r.Projects) == 0 || r.Projects[len(r.Projects)-1].Project != s.Project {
			r.Projects = append(r.Projects, ProjectRollup{Project: s.Project})
		}
		r.Projects[len(r.Projects)-1].add(s)
		r.Total.add(s)
	}
}

// Decode restores a Report rendered in the structured format.
func Decode(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type RenderOpts struct {
	Format  string
	Quiet   bool
	Verbose bool
}

// Render writes the report to w. Rendering is best-effort: callers log
// the returned error but never abort a run because of it.
func Render(w io.Writer, r *Report, opts RenderOpts) error {
	if opts.Format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return renderTable(w, r, opts)
}

func renderTable(w io.Writer, r *Report, opts RenderOpts) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if !opts.Quiet {
		header := "SOLUTION\tSTATUS\tRUNS\tMIN\tMEDIAN\tMEAN"
		if opts.Verbose {
			header += "\tMAX\tSTDEV\tP95\tP99\tTOTAL"
		}
		header += "\tANSWER"
		fmt.Fprintln(tw, header)
		fmt.Fprintln(tw, strings.Repeat("-", 72))
	}

	for _, s := range r.Solutions {
		// Failures are always shown, even in quiet mode.
		if opts.Quiet && s.OK() {
			continue
		}
		if !s.OK() {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-", s.ID(), s.Status)
			if opts.Verbose && !opts.Quiet {
				fmt.Fprint(tw, "\t-\t-\t-\t-\t-")
			}
			fmt.Fprintf(tw, "\t%s\n", s.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s",
			s.ID(), s.Status, s.Iterations, s.Min, s.Median, s.Mean)
		if opts.Verbose {
			fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\t%s", s.Max, s.Stdev, s.P95, s.P99, s.Total)
		}
		fmt.Fprintf(tw, "\t%s\n", s.Answer)
	}

	if !opts.Quiet {
		for _, p := range r.Projects {
			fmt.Fprintf(tw, "%s:\t%d solutions\t%d failed\tsum of means %s\tslowest %s (%s)\n",
				p.Project, p.Solutions, p.Failures, p.TotalMean, p.Slowest, p.SlowestMean)
		}
	}
	fmt.Fprintf(tw, "total:\t%d solutions\t%d failed\tsum of means %s\tslowest %s (%s)\n",
		r.Total.Solutions, r.Total.Failures, r.Total.TotalMean, r.Total.Slowest, r.Total.SlowestMean)
	if r.Incomplete {
		fmt.Fprintln(tw, "run interrupted: report covers completed solutions only")
	}
	return tw.Flush()
}
