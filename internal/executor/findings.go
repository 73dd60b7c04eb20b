package executor

import (
	"strings"

	"github.com/openclaw/reconloop/internal/intelligence"
	"github.com/openclaw/reconloop/internal/session"
)

// FindingsState accumulates deduplicated findings for the session
// lifetime. It never shrinks. Owned exclusively by the Orchestrator
// on the single control thread.
type FindingsState struct {
	Vulnerabilities []string
	Findings        []string
	LiveHosts       []string
	Subdomains      []string

	seenVulns   map[string]bool
	seenFinding map[string]bool
	seenHosts   map[string]bool
	seenSubs    map[string]bool
}

// NewFindingsState creates an empty accumulator.
func NewFindingsState() *FindingsState {
	return &FindingsState{
		seenVulns:   make(map[string]bool),
		seenFinding: make(map[string]bool),
		seenHosts:   make(map[string]bool),
		seenSubs:    make(map[string]bool),
	}
}

// AddVulnerability records a vulnerability if novel.
func (f *FindingsState) AddVulnerability(v string) {
	if v == "" || f.seenVulns[v] {
		return
	}
	f.seenVulns[v] = true
	f.Vulnerabilities = append(f.Vulnerabilities, v)
}

// AddFinding records an interesting finding if novel.
func (f *FindingsState) AddFinding(v string) {
	if v == "" || f.seenFinding[v] {
		return
	}
	f.seenFinding[v] = true
	f.Findings = append(f.Findings, v)
}

// AddLiveHost records a live host if novel.
func (f *FindingsState) AddLiveHost(v string) {
	if v == "" || f.seenHosts[v] {
		return
	}
	f.seenHosts[v] = true
	f.LiveHosts = append(f.LiveHosts, v)
}

// AddSubdomain records a subdomain candidate if novel.
func (f *FindingsState) AddSubdomain(v string) {
	if v == "" || f.seenSubs[v] {
		return
	}
	f.seenSubs[v] = true
	f.Subdomains = append(f.Subdomains, v)
}

// Merge folds an Analysis and the raw output into the accumulator.
// The line extraction heuristics are best-effort: malformed lines are
// skipped, never fatal.
func (f *FindingsState) Merge(analysis *intelligence.Analysis, output string) {
	if analysis != nil {
		for _, v := range analysis.Vulnerabilities {
			f.AddVulnerability(v)
		}
		for _, v := range analysis.Findings {
			f.AddFinding(v)
		}
	}

	lower := strings.ToLower(output)

	// Live hosts: lines that start with an HTTP URL (httpx-style output).
	if strings.Contains(lower, "http") {
		for _, line := range strings.Split(output, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "http") {
				f.AddLiveHost(line)
			}
		}
	}

	// Subdomains: dotted lines when the output as a whole looks host-related.
	if strings.Contains(lower, "subdomain") || strings.Contains(output, ".com") {
		for _, line := range strings.Split(output, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && strings.Contains(line, ".") {
				f.AddSubdomain(line)
			}
		}
	}
}

// Snapshot returns the persistable findings summary.
func (f *FindingsState) Snapshot() session.FindingsSnap {
	return session.FindingsSnap{
		Vulnerabilities: append([]string(nil), f.Vulnerabilities...),
		Findings:        append([]string(nil), f.Findings...),
		LiveHosts:       append([]string(nil), f.LiveHosts...),
		Subdomains:      append([]string(nil), f.Subdomains...),
	}
}
