package classifier

import (
	"regexp"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// Role is the structural role of a file. Exactly one role per file.
type Role string

const (
	RoleController    Role = "Controller"
	RoleApiController Role = "ApiController"
	RoleService       Role = "Service"
	RoleRepository    Role = "Repository"
	RoleModel         Role = "Model"
	RoleView          Role = "View"
	RoleConfig        Role = "Config"
	RoleOther         Role = "Other"
)

// Tag is an additive technology detection; a file may carry any subset.
type Tag string

const (
	TagUsesAsync      Tag = "UsesAsync"
	TagUsesORM        Tag = "UsesORM"
	TagUsesRawSQL     Tag = "UsesRawSQL"
	TagUsesHttpClient Tag = "UsesHttpClient"
)

// Classification is the per-file output of the classifier.
type Classification struct {
	Path            string
	Role            Role
	Tags            []Tag
	InheritanceHint string
	ClassNames      []string
	MethodNames     []string
}

// HasTag reports whether the classification carries the given tag.
func (c Classification) HasTag(tag Tag) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

var (
	apiControllerPathRe = regexp.MustCompile(`(?i)(?:^|/)Api[^/]*Controller\.cs$`)
	apiControllerBaseRe = regexp.MustCompile(`:\s*(ApiController|ControllerBase)\b`)
	controllerBaseRe    = regexp.MustCompile(`:\s*Controller\b`)
	repositoryBaseRe    = regexp.MustCompile(`:\s*I\w*Repository\b`)
	serviceBaseRe       = regexp.MustCompile(`:\s*I\w*Service\b`)

	classNameRe  = regexp.MustCompile(`(?m)(?:public|internal|private|protected)?\s+(?:static\s+)?(?:partial\s+)?class\s+(\w+)`)
	methodNameRe = regexp.MustCompile(`(?m)(?:public|private|protected|internal)\s+(?:static\s+)?(?:async\s+)?(?:Task<?[^>\s]*>?|void|[\w<>]+)\s+(\w+)\s*\(`)

	asyncRe = regexp.MustCompile(`\basync\b|\bawait\b`)
	ormRe   = regexp.MustCompile(`using\s+System\.Data\.Entity|using\s+Microsoft\.EntityFrameworkCore|DbContext|DbSet<`)
	sqlRe   = regexp.MustCompile(`(?i)SqlCommand|SqlConnection|ExecuteSqlCommand|FromSql|@"SELECT\s|@"INSERT\s|@"UPDATE\s|@"DELETE\s|'SELECT\s`)
	httpRe  = regexp.MustCompile(`HttpClient|WebClient|RestClient|HttpWebRequest`)
)

// Classifier assigns one Classification per scanned file. Pure function of
// file path and content; never errors.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify applies the ordered, first-match role rule table: path convention,
// then filename suffix, then declared base type, then Other. The order is
// fixed so identical input always classifies identically.
func (c *Classifier) Classify(file scanner.ScannedFile) Classification {
	content := file.Content()

	out := Classification{
		Path:        file.Path,
		Role:        c.determineRole(file.Path, content),
		ClassNames:  extractAll(classNameRe, content),
		MethodNames: extractAll(methodNameRe, content),
	}
	out.InheritanceHint = inheritanceHint(content)

	if asyncRe.MatchString(content) {
		out.Tags = append(out.Tags, TagUsesAsync)
	}
	if ormRe.MatchString(content) {
		out.Tags = append(out.Tags, TagUsesORM)
	}
	if sqlRe.MatchString(content) {
		out.Tags = append(out.Tags, TagUsesRawSQL)
	}
	if httpRe.MatchString(content) {
		out.Tags = append(out.Tags, TagUsesHttpClient)
	}

	return out
}

// ClassifyBatch classifies files in input order.
func (c *Classifier) ClassifyBatch(files []scanner.ScannedFile) []Classification {
	out := make([]Classification, 0, len(files))
	for _, f := range files {
		out = append(out, c.Classify(f))
	}
	return out
}

type roleRule struct {
	role  Role
	match func(path, content string) bool
}

// roleRules is the precedence table. More specific rules come first; the
// first matching rule wins.
var roleRules = []roleRule{
	{RoleView, func(path, _ string) bool {
		return strings.HasSuffix(path, ".cshtml")
	}},
	{RoleApiController, func(path, _ string) bool {
		return apiControllerPathRe.MatchString(path)
	}},
	{RoleApiController, func(_, content string) bool {
		return apiControllerBaseRe.MatchString(content)
	}},
	{RoleController, func(path, _ string) bool {
		return hasPathSegment(path, "Controllers") || strings.HasSuffix(path, "Controller.cs")
	}},
	{RoleController, func(_, content string) bool {
		return controllerBaseRe.MatchString(content)
	}},
	{RoleRepository, func(path, _ string) bool {
		return hasPathSegment(path, "Repositories") || hasPathSegment(path, "DataAccess") ||
			strings.HasSuffix(path, "Repository.cs") || strings.HasSuffix(path, "Dal.cs")
	}},
	{RoleRepository, func(_, content string) bool {
		return repositoryBaseRe.MatchString(content)
	}},
	{RoleService, func(path, _ string) bool {
		return hasPathSegment(path, "Services") || hasPathSegment(path, "Managers") || hasPathSegment(path, "Handlers") ||
			strings.HasSuffix(path, "Service.cs") || strings.HasSuffix(path, "Manager.cs") || strings.HasSuffix(path, "Handler.cs")
	}},
	{RoleService, func(_, content string) bool {
		return serviceBaseRe.MatchString(content)
	}},
	{RoleModel, func(path, _ string) bool {
		return hasPathSegment(path, "Models") || hasPathSegment(path, "Entities") ||
			strings.HasSuffix(path, "Dto.cs") || strings.HasSuffix(path, "ViewModel.cs") || strings.HasSuffix(path, "Model.cs")
	}},
	{RoleConfig, func(path, _ string) bool {
		lower := strings.ToLower(path)
		return strings.Contains(lower, "web.config") || strings.Contains(lower, "app.config")
	}},
}

func (c *Classifier) determineRole(path, content string) Role {
	for _, rule := range roleRules {
		if rule.match(path, content) {
			return rule.role
		}
	}
	return RoleOther
}

// hasPathSegment reports a case-insensitive, whole-segment path match.
func hasPathSegment(path, segment string) bool {
	for _, part := range strings.Split(path, "/") {
		if strings.EqualFold(part, segment) {
			return true
		}
	}
	return false
}

// inheritanceHint returns the textual base-type name of the first class
// declaration with a base list, used for endpoint and role inference only.
var inheritanceRe = regexp.MustCompile(`class\s+\w+\s*:\s*([\w.<>]+)`)

func inheritanceHint(content string) string {
	m := inheritanceRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

func extractAll(re *regexp.Regexp, content string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return out
}
