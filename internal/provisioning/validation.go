package provisioning

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// namespaceNamePattern follows the Kubernetes DNS label rules: lowercase
// alphanumerics and hyphens, starting and ending with an alphanumeric.
var namespaceNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

const maxNamespaceNameLength = 63

var validEnvironments = []nsapi.Environment{
	nsapi.EnvDevelopment,
	nsapi.EnvStaging,
	nsapi.EnvProduction,
}

var validNetworkPolicies = []nsapi.NetworkPolicy{
	nsapi.NetworkIsolated,
	nsapi.NetworkTeamShared,
	nsapi.NetworkOpen,
}

// validateRequest checks the static request fields. It never touches the
// store or any external service.
func (s *Service) validateRequest(req *nsapi.CreateNamespaceRequest) error {
	if req.NamespaceName == "" {
		return &ValidationError{Field: "namespaceName", Message: "must not be empty"}
	}
	if len(req.NamespaceName) > maxNamespaceNameLength {
		return &ValidationError{
			Field:   "namespaceName",
			Message: fmt.Sprintf("must be at most %d characters", maxNamespaceNameLength),
		}
	}
	if !namespaceNamePattern.MatchString(req.NamespaceName) {
		return &ValidationError{
			Field:   "namespaceName",
			Message: "must be lowercase alphanumerics and hyphens, starting and ending with an alphanumeric",
		}
	}
	if req.Team == "" {
		return &ValidationError{Field: "team", Message: "must not be empty"}
	}
	if !slices.Contains(validEnvironments, req.Environment) {
		return &ValidationError{
			Field:   "environment",
			Message: fmt.Sprintf("%q is not one of development, staging, production", req.Environment),
		}
	}
	if !slices.Contains(validNetworkPolicies, req.NetworkPolicy) {
		return &ValidationError{
			Field:   "networkPolicy",
			Message: fmt.Sprintf("%q is not one of isolated, team-shared, open", req.NetworkPolicy),
		}
	}
	for _, feature := range req.Features {
		if !slices.Contains(s.cfg.Provisioning.AllowedFeatures, feature) {
			return &ValidationError{
				Field:   "features",
				Message: fmt.Sprintf("%q is not an allowed feature", feature),
			}
		}
	}
	return nil
}
