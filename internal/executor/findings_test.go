package executor

import (
	"reflect"
	"testing"

	"github.com/openclaw/reconloop/internal/intelligence"
)

func TestFindingsStateDeduplicates(t *testing.T) {
	fs := NewFindingsState()
	fs.AddVulnerability("SQL injection on /login")
	fs.AddVulnerability("SQL injection on /login")
	fs.AddVulnerability("XSS on /search")
	fs.AddVulnerability("")

	want := []string{"SQL injection on /login", "XSS on /search"}
	if !reflect.DeepEqual(fs.Vulnerabilities, want) {
		t.Fatalf("vulnerabilities = %v, want %v", fs.Vulnerabilities, want)
	}
}

func TestFindingsStatePreservesInsertionOrder(t *testing.T) {
	fs := NewFindingsState()
	fs.AddLiveHost("http://a.example.com")
	fs.AddLiveHost("http://b.example.com")
	fs.AddLiveHost("http://a.example.com")
	fs.AddLiveHost("http://c.example.com")

	want := []string{"http://a.example.com", "http://b.example.com", "http://c.example.com"}
	if !reflect.DeepEqual(fs.LiveHosts, want) {
		t.Fatalf("live hosts = %v, want %v", fs.LiveHosts, want)
	}
}

func TestMergeTakesAnalysisFindings(t *testing.T) {
	fs := NewFindingsState()
	a := &intelligence.Analysis{
		Findings:        []string{"open port 80", "open port 443"},
		Vulnerabilities: []string{"outdated nginx"},
	}
	fs.Merge(a, "")

	if len(fs.Findings) != 2 || len(fs.Vulnerabilities) != 1 {
		t.Fatalf("findings=%v vulnerabilities=%v", fs.Findings, fs.Vulnerabilities)
	}
}

func TestMergeExtractsLiveHostsFromOutput(t *testing.T) {
	fs := NewFindingsState()
	out := "http://app.example.com\nhttps://admin.example.com\nnot a url\n"
	fs.Merge(&intelligence.Analysis{}, out)

	want := []string{"http://app.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(fs.LiveHosts, want) {
		t.Fatalf("live hosts = %v, want %v", fs.LiveHosts, want)
	}
}

func TestMergeExtractsSubdomains(t *testing.T) {
	fs := NewFindingsState()
	out := "subdomain scan results:\napi.example.com\nmail.example.com\nplainword\n"
	fs.Merge(&intelligence.Analysis{}, out)

	if len(fs.Subdomains) < 2 {
		t.Fatalf("subdomains = %v, want api and mail entries", fs.Subdomains)
	}
}

func TestMergeSkipsSubdomainsWithoutMarker(t *testing.T) {
	fs := NewFindingsState()
	fs.Merge(&intelligence.Analysis{}, "api.internal.net\nmail.internal.net\n")

	if len(fs.Subdomains) != 0 {
		t.Fatalf("subdomains = %v, want none without a subdomain marker", fs.Subdomains)
	}
}

func TestSnapshotCopiesSlices(t *testing.T) {
	fs := NewFindingsState()
	fs.AddSubdomain("api.example.com")
	snap := fs.Snapshot()
	fs.AddSubdomain("mail.example.com")

	if len(snap.Subdomains) != 1 {
		t.Fatalf("snapshot mutated after later adds: %v", snap.Subdomains)
	}
}
