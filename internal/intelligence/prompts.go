package intelligence

import (
	"fmt"
	"strings"
)

const (
	analystSystemPrompt = "You are a security analysis expert. Analyze tool outputs and provide actionable insights."

	// analysisOutputLimit bounds what is transmitted to the model.
	// Persisted logs always keep the full output.
	analysisOutputLimit = 3000
)

// SystemPrompt builds the fixed instruction for command proposals.
// Wordlist limits are advisory: they are enforced here, in prompt
// text, not mechanically.
func SystemPrompt(maxWordlistSize int, forbiddenWordlists []string) string {
	var forbidden strings.Builder
	for i, path := range forbiddenWordlists {
		fmt.Fprintf(&forbidden, "%d. NEVER use %s\n", i+3, path)
	}

	return fmt.Sprintf(`You are an elite bug bounty hunter AI agent. You must respond ONLY with valid JSON.

**CRITICAL RULES:**
1. ALWAYS respond with valid JSON in this exact format:
{
    "command": "exact command to execute",
    "next_phase": "phase name for next iteration",
    "stop": false,
    "reasoning": "brief explanation of why this command"
}

2. NEVER use wordlists larger than %d entries for subdomain enumeration
%s4. Analyze previous command outputs carefully before generating next command
5. Do not repeat commands that already failed or produced empty results
6. Escalate techniques when basic enumeration is complete
7. Set "stop": true when no further enumeration is needed or max attempts reached

**Available Phases:**
- reconnaissance: subdomain discovery, DNS enumeration
- scanning: port scanning, service detection, directory bruteforce
- exploitation: vulnerability scanning, sqlmap, nikto, nuclei

**Tool Guidelines:**
- subfinder, assetfinder, amass: passive subdomain enumeration
- ffuf: use with small wordlists (<%d entries), add -mc flag for status codes
- httpx: probe live hosts with -t 100 for concurrency
- nmap: -p- for full port scan, -A for service detection
- katana: crawl with -d 3-5 depth
- nuclei: use specific template categories (-t cves/, -t misconfiguration/)
- sqlmap: start with --level 2 --risk 1, escalate if needed
- arjun: parameter discovery
- nikto: web server scanning

**Output Analysis:**
Before generating next command, analyze:
- Did previous command find anything?
- Are results empty or failed?
- Should we try different approach or escalate?
- Have we exhausted this phase?

**Example Response:**
{
    "command": "subfinder -d target.com -o subdomains.txt",
    "next_phase": "reconnaissance",
    "stop": false,
    "reasoning": "Starting with passive subdomain enumeration"
}`, maxWordlistSize, forbidden.String(), maxWordlistSize)
}

// proposalPrompt assembles the per-step user prompt from the context.
func proposalPrompt(pctx PromptContext) string {
	historyText := pctx.HistoryText
	if historyText == "" {
		historyText = "No history yet - this is the first command"
	}

	return fmt.Sprintf(`TARGET: %s
CURRENT PHASE: %s
METHODOLOGY: %s
STEP: %d

TOOLS AVAILABLE: %s

ACCUMULATED FINDINGS:
- Vulnerabilities: %d
- Live Hosts: %d
- Subdomains: %d

RECENT COMMAND HISTORY WITH ANALYSIS:
%s

INSTRUCTIONS:
1. Analyze the RECENT COMMAND HISTORY carefully
2. Check what worked and what failed
3. Avoid repeating failed commands
4. Generate the next logical command based on findings
5. Escalate techniques when appropriate
6. Move to next phase when current phase is exhausted

Respond with valid JSON only.`,
		pctx.Target,
		pctx.Phase,
		strings.Join(pctx.Phases, ", "),
		pctx.Step,
		strings.Join(pctx.Tools, ", "),
		pctx.Vulnerabilities,
		pctx.LiveHosts,
		pctx.Subdomains,
		historyText,
	)
}

// analysisPrompt builds the output-analysis prompt. The output is
// truncated for transmission only.
func analysisPrompt(command, output, phase string) string {
	if len(output) > analysisOutputLimit {
		output = output[:analysisOutputLimit]
	}

	return fmt.Sprintf(`Analyze this security tool output and provide actionable insights:

PHASE: %s
COMMAND: %s
OUTPUT (truncated if long):
%s

Provide a JSON response with:
{
    "findings": ["list of important findings"],
    "vulnerabilities": ["specific vulnerabilities found"],
    "next_actions": ["recommended next steps"],
    "risk_level": "low/medium/high/critical",
    "summary": "brief summary of what was discovered"
}`, phase, command, output)
}
