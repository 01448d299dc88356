package audit

import (
	"regexp"
	"strings"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/classifier"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/internal/scanner"
)

// endpointActionRe matches public action methods in controller files.
var endpointActionRe = regexp.MustCompile(`public\s+(?:async\s+)?[\w<>,\[\].?]+\s+(\w+)\s*\(`)

// extractEndpoints builds the endpoint inventory from controller
// classifications. The route is inferred from the naming convention.
func extractEndpoints(files []scanner.ScannedFile, classifications []classifier.Classification) []Endpoint {
	byPath := make(map[string]scanner.ScannedFile, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	var endpoints []Endpoint
	for _, class := range classifications {
		if class.Role != classifier.RoleController && class.Role != classifier.RoleApiController {
			continue
		}
		file, ok := byPath[class.Path]
		if !ok {
			continue
		}

		controller := controllerName(class)
		for _, m := range endpointActionRe.FindAllStringSubmatch(file.Content(), -1) {
			action := m[1]
			if action == controller {
				// constructor, not an action
				continue
			}
			endpoints = append(endpoints, Endpoint{
				Controller: controller,
				Action:     action,
				Route:      "/" + strings.TrimSuffix(controller, "Controller") + "/" + action,
				File:       class.Path,
			})
		}
	}
	return endpoints
}

func controllerName(class classifier.Classification) string {
	if len(class.ClassNames) > 0 {
		return class.ClassNames[0]
	}
	base := class.Path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".cs")
}
