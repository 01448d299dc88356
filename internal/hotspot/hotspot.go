// Package hotspot builds a best-effort controller -> service -> repository
// call graph and flags endpoints that touch the database more than once per
// request. Everything here is textual inference, not type resolution.
package hotspot

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// Endpoint is the minimal endpoint identity the analysis needs.
type Endpoint struct {
	Controller string
	Action     string
	Route      string
}

// EndpointPath is one endpoint's inferred database access path.
type EndpointPath struct {
	Endpoint     string   `json:"endpoint"`
	Route        string   `json:"route"`
	DBTouches    int      `json:"db_touches"`
	Services     []string `json:"services"`
	Repositories []string `json:"repositories"`
	Chains       []string `json:"chains"`
}

// Analysis is the hotspot-mode output attached to the audit report.
type Analysis struct {
	CallGraph        []EndpointPath `json:"call_graph"`
	Hotspots         []EndpointPath `json:"hotspots"`
	StoredProcedures []string       `json:"stored_procedures"`
	SQLFragments     []string       `json:"sql_fragments"`
}

var (
	methodDeclRe = regexp.MustCompile(
		`(?m)(?:public|private|protected|internal)\s+(?:virtual\s+|override\s+|static\s+|sealed\s+|new\s+|partial\s+)*(?:async\s+)?[\w<>,\[\].?]+\s+(\w+)\s*\([^;{}]*\)\s*\{`)
	fieldDeclRe  = regexp.MustCompile(`(?:private|protected|internal)\s+(?:readonly\s+)?([A-Za-z_]\w*(?:<[^>]+>)?)\s+(_[A-Za-z_]\w*)\s*;`)
	memberCallRe = regexp.MustCompile(`(_[A-Za-z_]\w*)\s*\.\s*([A-Za-z_]\w*)\s*\(`)

	dbTouchRes = compileAll(
		`\.SaveChanges(?:Async)?\s*\(`,
		`\.ExecuteSql(?:Command|Raw|Interpolated)(?:Async)?\s*\(`,
		`\.FromSql(?:Raw|Interpolated)?\s*\(`,
		`\.ToList(?:Async)?\s*\(`,
		`\.FirstOrDefault(?:Async)?\s*\(`,
		`\.SingleOrDefault(?:Async)?\s*\(`,
		`\.Find(?:Async)?\s*\(`,
		`\.Any(?:Async)?\s*\(`,
		`\.Count(?:Async)?\s*\(`,
		`SqlCommand\s*\(`,
		`SqlConnection\s*\(`,
		`SqlDataReader\b`,
		`CommandType\.StoredProcedure`,
	)

	sqlStringRe   = regexp.MustCompile(`(?s)(?:\$@|@\$|@|\$)?"(?:""|\\"|[^"])*"`)
	spExecRe      = regexp.MustCompile(`(?i)\bEXEC(?:UTE)?\s+((?:\[?\w+\]?\.)*\[?\w+\]?)`)
	commandTextRe = regexp.MustCompile(`(?i)CommandText\s*=\s*@?"([^"]+)"`)
	sqlFragmentRe = regexp.MustCompile(`(?i)\b(select|insert|update|delete|merge|with|join|exec(?:ute)?)\b`)
	storedProcRe  = regexp.MustCompile(`(?i)CommandType\.StoredProcedure`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

type methodKey struct {
	class  string
	method string
}

type memberCall struct {
	class  string
	method string
}

// Analyze walks the classified file set and resolves each endpoint's call
// chain through `I<Name>` interface fields to service and repository classes.
func Analyze(files []scanner.ScannedFile, classifications []classifier.Classification, endpoints []Endpoint) *Analysis {
	classByPath := make(map[string]classifier.Classification, len(classifications))
	for _, c := range classifications {
		classByPath[c.Path] = c
	}

	classToRole := map[string]classifier.Role{}
	classToContent := map[string]string{}
	storedProcs := map[string]bool{}
	sqlFragments := map[string]bool{}

	for _, file := range files {
		if !strings.HasSuffix(file.Path, ".cs") {
			continue
		}
		content := file.Content()
		if content == "" {
			continue
		}
		class := classByPath[file.Path]
		className := primaryClassName(class, file.Path)
		classToRole[className] = class.Role
		classToContent[className] = content

		collectSQLArtifacts(content, storedProcs, sqlFragments)
	}

	interfaceMap := buildInterfaceMap(classToRole)

	methodDBTouches := map[methodKey]int{}
	methodCalls := map[methodKey][]memberCall{}
	for className, content := range classToContent {
		members := extractMemberTypes(content, interfaceMap)
		for methodName, body := range extractMethodBodies(content) {
			key := methodKey{className, methodName}
			methodDBTouches[key] = countDBTouches(body)
			methodCalls[key] = extractMemberCalls(body, members, interfaceMap)
		}
	}

	analysis := &Analysis{
		StoredProcedures: sortedKeys(storedProcs),
		SQLFragments:     sortedKeys(sqlFragments),
	}

	for _, ep := range endpoints {
		name := ep.Controller + "." + ep.Action
		entry := EndpointPath{Endpoint: name, Route: ep.Route}

		services := map[string]bool{}
		repositories := map[string]bool{}
		entry.DBTouches = methodDBTouches[methodKey{ep.Controller, ep.Action}]

		for _, call := range methodCalls[methodKey{ep.Controller, ep.Action}] {
			role := classToRole[call.class]
			switch {
			case isService(call.class, role):
				services[call.class] = true
				entry.DBTouches += methodDBTouches[methodKey{call.class, call.method}]

				foundRepo := false
				for _, downstream := range methodCalls[methodKey{call.class, call.method}] {
					if isRepository(downstream.class, classToRole[downstream.class]) {
						foundRepo = true
						repositories[downstream.class] = true
						entry.DBTouches += methodDBTouches[methodKey{downstream.class, downstream.method}]
						entry.Chains = append(entry.Chains, fmt.Sprintf("%s -> %s.%s -> %s.%s",
							name, call.class, call.method, downstream.class, downstream.method))
					}
				}
				if !foundRepo {
					entry.Chains = append(entry.Chains, fmt.Sprintf("%s -> %s.%s", name, call.class, call.method))
				}

			case isRepository(call.class, role):
				repositories[call.class] = true
				entry.DBTouches += methodDBTouches[methodKey{call.class, call.method}]
				entry.Chains = append(entry.Chains, fmt.Sprintf("%s -> %s.%s", name, call.class, call.method))
			}
		}

		if len(entry.Chains) == 0 {
			entry.Chains = append(entry.Chains, fmt.Sprintf("%s (no downstream service/repository call inferred)", name))
		}
		entry.Services = sortedKeys(services)
		entry.Repositories = sortedKeys(repositories)

		analysis.CallGraph = append(analysis.CallGraph, entry)
		if entry.DBTouches > 1 {
			analysis.Hotspots = append(analysis.Hotspots, entry)
		}
	}

	return analysis
}

func primaryClassName(class classifier.Classification, path string) string {
	if len(class.ClassNames) > 0 {
		return class.ClassNames[0]
	}
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".cs")
}

// buildInterfaceMap assumes the I<Name> convention: IUserService resolves to
// UserService when such a class exists.
func buildInterfaceMap(classToRole map[string]classifier.Role) map[string]string {
	out := make(map[string]string, len(classToRole))
	for className := range classToRole {
		out["I"+className] = className
	}
	return out
}

// extractMethodBodies pairs method names with their brace-matched bodies.
func extractMethodBodies(content string) map[string]string {
	methods := map[string]string{}
	for _, loc := range methodDeclRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[loc[2]:loc[3]]
		bodyStart := loc[1] - 1
		bodyEnd := findMatchingBrace(content, bodyStart)
		if bodyEnd <= bodyStart {
			continue
		}
		methods[name] = content[bodyStart+1 : bodyEnd]
	}
	return methods
}

func findMatchingBrace(content string, start int) int {
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// extractMemberTypes maps field names to their types, resolving interfaces
// to likely concrete classes.
func extractMemberTypes(content string, interfaceMap map[string]string) map[string]string {
	members := map[string]string{}
	for _, m := range fieldDeclRe.FindAllStringSubmatch(content, -1) {
		normalized := normalizeTypeName(m[1])
		if concrete, ok := interfaceMap[normalized]; ok {
			normalized = concrete
		}
		members[m[2]] = normalized
	}
	return members
}

func normalizeTypeName(typeName string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(typeName, "?", ""))
	if i := strings.Index(cleaned, "<"); i >= 0 {
		cleaned = cleaned[:i]
	}
	if i := strings.LastIndex(cleaned, "."); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	return cleaned
}

// extractMemberCalls resolves `_service.DoWork()`-style calls to target
// class names via the member type map.
func extractMemberCalls(body string, members map[string]string, interfaceMap map[string]string) []memberCall {
	var calls []memberCall
	for _, m := range memberCallRe.FindAllStringSubmatch(body, -1) {
		memberType, ok := members[m[1]]
		if !ok {
			continue
		}
		target := memberType
		if concrete, ok := interfaceMap[memberType]; ok {
			target = concrete
		}
		calls = append(calls, memberCall{class: target, method: m[2]})
	}
	return calls
}

func countDBTouches(body string) int {
	total := 0
	for _, re := range dbTouchRes {
		total += len(re.FindAllStringIndex(body, -1))
	}
	return total
}

func isService(className string, role classifier.Role) bool {
	return role == classifier.RoleService || strings.HasSuffix(className, "Service")
}

func isRepository(className string, role classifier.Role) bool {
	return role == classifier.RoleRepository || strings.HasSuffix(className, "Repository")
}

// collectSQLArtifacts pulls stored procedure names and SQL fragments out of
// string literals and ADO.NET command patterns.
func collectSQLArtifacts(content string, storedProcs, sqlFragments map[string]bool) {
	for _, literal := range sqlStringRe.FindAllString(content, -1) {
		text := decodeStringLiteral(literal)
		compact := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
		if compact == "" {
			continue
		}

		if sqlFragmentRe.MatchString(compact) {
			if len(compact) > 180 {
				compact = compact[:180]
			}
			sqlFragments[compact] = true
		}

		for _, m := range spExecRe.FindAllStringSubmatch(compact, -1) {
			raw := m[1]
			if i := strings.LastIndex(raw, "."); i >= 0 {
				raw = raw[i+1:]
			}
			raw = strings.NewReplacer("[", "", "]", "").Replace(raw)
			if raw != "" {
				storedProcs[raw] = true
			}
		}
	}

	if storedProcRe.MatchString(content) {
		for _, m := range commandTextRe.FindAllStringSubmatch(content, -1) {
			cleaned := m[1]
			if i := strings.LastIndex(cleaned, "."); i >= 0 {
				cleaned = cleaned[i+1:]
			}
			cleaned = strings.TrimSpace(strings.NewReplacer("[", "", "]", "").Replace(cleaned))
			if cleaned != "" {
				storedProcs[cleaned] = true
			}
		}
	}
}

// decodeStringLiteral turns a basic C# string or verbatim string literal
// into raw text.
func decodeStringLiteral(literal string) string {
	text := literal
	prefix := ""
	for len(text) > 0 && (text[0] == '@' || text[0] == '$') {
		prefix += string(text[0])
		text = text[1:]
	}
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return ""
	}
	body := text[1 : len(text)-1]

	if strings.Contains(prefix, "@") {
		return strings.ReplaceAll(body, `""`, `"`)
	}
	return strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t").Replace(body)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
