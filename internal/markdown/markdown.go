// Package markdown renders an audit report into the documented nine-section
// markdown document (plus the database hotspot sections when that mode ran).
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/audit"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/findings"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/hotspot"
)

const maxListedItems = 10

// Render produces the full markdown report.
func Render(report *audit.Report) string {
	sections := []string{
		renderHeader(report),
		renderExecutiveSummary(report),
		renderFileStructure(report),
		renderEndpointMap(report),
	}
	if report.Hotspots != nil {
		sections = append(sections, renderHotspots(report), renderSQLChecklist(report))
	}
	sections = append(sections,
		renderPerformanceRisks(report),
		renderAsyncOpportunities(report),
		renderRealtimeOpportunities(report),
		renderQueueOpportunities(report),
		renderRoadmap(report),
		renderDetailedFindings(report),
	)
	return strings.Join(sections, "\n\n")
}

// Write renders the report and writes it to path, creating parent
// directories as needed.
func Write(report *audit.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Render(report)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderHeader(report *audit.Report) string {
	return fmt.Sprintf(`# Legacy .NET Audit Report

**Project:** %s
**Generated:** %s
**Run ID:** %s
**Files Scanned:** %d
**Files Analyzed:** %d

---`,
		report.ProjectPath,
		report.GeneratedAt.Format("2006-01-02 15:04:05"),
		report.RunID,
		report.TotalFiles,
		report.AnalyzedFiles,
	)
}

func renderExecutiveSummary(report *audit.Report) string {
	critical := report.Counts.BySeverity[findings.SeverityCritical]
	high := report.Counts.BySeverity[findings.SeverityHigh]

	status := "🟢 Good"
	if critical > 0 {
		status = "🔴 Critical"
	} else if high > 0 {
		status = "🟡 Warning"
	}

	roles := report.RoleCounts()
	return fmt.Sprintf(`## 📊 Executive Summary

**Overall Status:** %s

- **Total Issues Found:** %d
- **Critical Issues:** %d
- **High Priority Issues:** %d

### Quick Stats
- **Controllers:** %d files
- **API Controllers:** %d files
- **Services:** %d files
- **Repositories:** %d files`,
		status,
		report.Counts.Total,
		critical,
		high,
		roles[classifier.RoleController],
		roles[classifier.RoleApiController],
		roles[classifier.RoleService],
		roles[classifier.RoleRepository],
	)
}

func renderFileStructure(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 📁 File Structure Summary\n\n")
	b.WriteString("| File Type | Count |\n|-----------|-------|\n")

	roles := report.RoleCounts()
	type roleCount struct {
		role  classifier.Role
		count int
	}
	var counts []roleCount
	for role, count := range roles {
		if count > 0 {
			counts = append(counts, roleCount{role, count})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].role < counts[j].role
	})
	for _, rc := range counts {
		fmt.Fprintf(&b, "| %s | %d |\n", rc.role, rc.count)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderEndpointMap(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 🌐 Endpoint Map\n\n")
	if len(report.Endpoints) == 0 {
		b.WriteString("_No endpoints detected_")
		return b.String()
	}
	b.WriteString("| Controller | Method | Route/Action |\n|------------|--------|--------------|\n")
	for _, e := range report.Endpoints {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Controller, e.Action, e.Route)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderHotspots(report *audit.Report) string {
	hs := report.Hotspots
	var b strings.Builder
	b.WriteString("## 🧪 Database Hotspot Mode\n\n")
	fmt.Fprintf(&b, "- Endpoint call paths analyzed: **%d**\n", len(hs.CallGraph))
	fmt.Fprintf(&b, "- Endpoints with multiple DB touches: **%d**\n\n", len(hs.Hotspots))

	if len(hs.Hotspots) > 0 {
		b.WriteString("### Endpoints With Multiple DB Touches\n\n")
		b.WriteString("| Endpoint | Route | DB Touches |\n|----------|-------|------------|\n")
		sorted := append([]hotspot.EndpointPath(nil), hs.Hotspots...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DBTouches > sorted[j].DBTouches })
		for i, h := range sorted {
			if i >= 20 {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %d |\n", h.Endpoint, h.Route, h.DBTouches)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("✅ No endpoints exceeded one inferred DB touch.\n\n")
	}

	b.WriteString("### Inferred Call Graph (controller -> service -> repository)\n\n")
	if len(hs.CallGraph) == 0 {
		b.WriteString("_No endpoint call graph data available._")
		return b.String()
	}
	for i, entry := range hs.CallGraph {
		if i >= 30 {
			break
		}
		fmt.Fprintf(&b, "- **%s** (%d DB touches)\n", entry.Endpoint, entry.DBTouches)
		for j, chain := range entry.Chains {
			if j >= 3 {
				fmt.Fprintf(&b, "  - _... %d more inferred paths_\n", len(entry.Chains)-3)
				break
			}
			fmt.Fprintf(&b, "  - `%s`\n", chain)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderSQLChecklist(report *audit.Report) string {
	hs := report.Hotspots
	var b strings.Builder
	b.WriteString("## 🧾 Stored Procedures & Join Review Checklist\n\n")
	b.WriteString(`### Checklist
- [ ] Validate all stored procedure result cardinality assumptions
- [ ] Confirm every SQL join has indexed predicates on join/filter columns
- [ ] Review execution plans for the listed SQL fragments
- [ ] Verify SQL uses parameterization for user inputs
- [ ] Ensure SP/SQL calls include timeout and error handling strategy

### Referenced Stored Procedures

`)
	if len(hs.StoredProcedures) > 0 {
		for i, sp := range hs.StoredProcedures {
			if i >= 50 {
				break
			}
			fmt.Fprintf(&b, "- `%s`\n", sp)
		}
	} else {
		b.WriteString("_No stored procedure references detected_\n")
	}

	b.WriteString("\n### SQL Fragments Found\n\n")
	if len(hs.SQLFragments) > 0 {
		for i, fragment := range hs.SQLFragments {
			if i >= 50 {
				break
			}
			fmt.Fprintf(&b, "- `%s`\n", fragment)
		}
	} else {
		b.WriteString("_No SQL fragments detected_\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderPerformanceRisks(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## ⚠️ Performance Risk Summary\n\n")

	if report.Counts.Total == 0 {
		b.WriteString("✅ **No major performance risks detected!**")
		return b.String()
	}

	b.WriteString("| Issue Type | Count | Severity |\n|------------|-------|----------|\n")
	type kindCount struct {
		kind  findings.Kind
		count int
	}
	var counts []kindCount
	for kind, count := range report.Counts.ByKind {
		counts = append(counts, kindCount{kind, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].kind < counts[j].kind
	})
	for _, kc := range counts {
		severity := findings.SeverityOf(kc.kind)
		fmt.Fprintf(&b, "| %s | %d | %s %s |\n", kc.kind, kc.count, severityIcon(severity), severity)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderAsyncOpportunities(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 🚀 Async/Await Opportunities\n\n")
	if len(report.AsyncOpportunities) == 0 {
		b.WriteString("✅ **Async patterns are well utilized or not applicable**")
		return b.String()
	}
	fmt.Fprintf(&b, "Found **%d** opportunities to introduce async/await:\n\n", len(report.AsyncOpportunities))
	writeTruncatedList(&b, report.AsyncOpportunities)
	return strings.TrimSuffix(b.String(), "\n")
}

func renderRealtimeOpportunities(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 📡 Real-time (SignalR) Opportunities\n\n")

	polls := report.FindingsOfKind(findings.PollingOpportunity)
	if len(polls) == 0 {
		b.WriteString("_No obvious real-time patterns detected_")
		return b.String()
	}
	fmt.Fprintf(&b, "Found **%d** potential real-time use cases:\n\n", len(polls))
	b.WriteString("These areas use polling or timers and could benefit from SignalR:\n\n")
	items := make([]string, 0, len(polls))
	for _, f := range polls {
		items = append(items, fmt.Sprintf("%s:%d - %s", f.FilePath, f.StartLine, f.Description))
	}
	writeTruncatedList(&b, items)
	return strings.TrimSuffix(b.String(), "\n")
}

func renderQueueOpportunities(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 🔄 Background Queue Opportunities\n\n")
	b.WriteString("Consider using message queues (RabbitMQ, Azure Queue, Hangfire) for:\n\n")

	queues := report.FindingsOfKind(findings.QueueCandidate)
	if len(queues) == 0 {
		b.WriteString("_No obvious background job candidates detected_")
		return b.String()
	}
	items := make([]string, 0, len(queues))
	for _, f := range queues {
		items = append(items, fmt.Sprintf("%s:%d - %s", f.FilePath, f.StartLine, f.Description))
	}
	writeTruncatedList(&b, items)
	return strings.TrimSuffix(b.String(), "\n")
}

func renderRoadmap(report *audit.Report) string {
	critical := report.Counts.BySeverity[findings.SeverityCritical]
	high := report.Counts.BySeverity[findings.SeverityHigh]

	return fmt.Sprintf(`## 🗺️ Recommended Modernization Roadmap

### Phase 1: Critical Fixes (Immediate)
**Priority:** 🔴 Critical
**Timeline:** 1-2 weeks

%s

### Phase 2: Performance Optimization
**Priority:** 🟡 High
**Timeline:** 2-4 weeks

%s

### Phase 3: Architecture Modernization
**Priority:** 🟢 Medium
**Timeline:** 1-2 months

%s

### Phase 4: Platform Migration
**Priority:** 🔵 Future
**Timeline:** 3-6 months

%s`,
		roadmapItems(critical,
			"Fix all synchronous blocking calls (.Result, .Wait())",
			"Eliminate database operations inside loops",
			"Address N+1 query problems",
		),
		roadmapItems(high,
			"Refactor large files (>300 lines)",
			"Implement async/await throughout I/O operations",
			"Parallelize independent HTTP calls with Task.WhenAll()",
		),
		roadmapItems(report.Counts.Total,
			"Introduce SignalR for real-time features",
			"Implement background job processing (Hangfire/Azure Functions)",
			"Consolidate duplicate repository patterns",
			"Apply CQRS pattern where appropriate",
		),
		roadmapItems(0,
			"Migrate to .NET 8/9",
			"Adopt minimal APIs for new endpoints",
			"Implement containerization (Docker)",
			"Set up CI/CD pipeline improvements",
		),
	)
}

func roadmapItems(issueCount int, items ...string) string {
	var b strings.Builder
	if issueCount > 0 {
		fmt.Fprintf(&b, "**%d issues to address:**\n\n", issueCount)
	}
	for _, item := range items {
		fmt.Fprintf(&b, "- [ ] %s\n", item)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderDetailedFindings(report *audit.Report) string {
	var b strings.Builder
	b.WriteString("## 📋 Detailed Issues\n\n")

	critical := findingsBySeverity(report, findings.SeverityCritical)
	high := findingsBySeverity(report, findings.SeverityHigh)

	if len(critical) == 0 && len(high) == 0 {
		b.WriteString("✅ **No critical or high priority issues found!**")
		return b.String()
	}

	if len(critical) > 0 {
		b.WriteString("### 🔴 Critical Issues\n\n")
		for i, f := range critical {
			if i >= 20 {
				break
			}
			b.WriteString(formatFinding(f))
		}
	}
	if len(high) > 0 {
		b.WriteString("### 🟡 High Priority Issues\n\n")
		for i, f := range high {
			if i >= 20 {
				break
			}
			b.WriteString(formatFinding(f))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func findingsBySeverity(report *audit.Report, severity findings.Severity) []findings.Finding {
	var out []findings.Finding
	for _, f := range report.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

func formatFinding(f findings.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#### %s - %s\n", f.Kind, f.FilePath)
	if f.StartLine > 0 {
		if f.EndLine > f.StartLine {
			fmt.Fprintf(&b, "**Location:** Lines %d-%d\n", f.StartLine, f.EndLine)
		} else {
			fmt.Fprintf(&b, "**Location:** Line %d\n", f.StartLine)
		}
	}
	fmt.Fprintf(&b, "**Severity:** %s %s\n", severityIcon(f.Severity), f.Severity)
	fmt.Fprintf(&b, "**Description:** %s\n", f.Description)
	if f.Snippet != "" {
		b.WriteString("\n**Code:**\n```csharp\n")
		b.WriteString(f.Snippet)
		b.WriteString("\n```\n")
	}
	if f.Recommendation != "" {
		fmt.Fprintf(&b, "\n**Recommendation:** %s\n", f.Recommendation)
	}
	b.WriteString("\n---\n\n")
	return b.String()
}

func severityIcon(severity findings.Severity) string {
	switch severity {
	case findings.SeverityCritical:
		return "🔴"
	case findings.SeverityHigh:
		return "🟡"
	case findings.SeverityMedium:
		return "🟠"
	case findings.SeverityLow:
		return "🔵"
	default:
		return "⚪"
	}
}

func writeTruncatedList(b *strings.Builder, items []string) {
	for i, item := range items {
		if i >= maxListedItems {
			fmt.Fprintf(b, "\n_... and %d more_\n", len(items)-maxListedItems)
			return
		}
		fmt.Fprintf(b, "- %s\n", item)
	}
}
