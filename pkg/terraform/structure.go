package terraform

import (
	"strings"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// ResourceCheck is the structural result for one connector resource.
type ResourceCheck struct {
	Resource string `json:"resource"`
	Err      error  `json:"-"`
}

// OK reports whether the resource passed every check.
func (r ResourceCheck) OK() bool {
	return r.Err == nil
}

// CheckStructure runs the shape checklist against every connector resource in
// the document, in document order. Each result holds the first violation found
// in that resource, or nil.
func CheckStructure(file *hcldoc.File) []ResourceCheck {
	var checks []ResourceCheck
	if file == nil || file.Body == nil {
		return checks
	}
	for _, block := range file.Body.Blocks() {
		if block.Type != "resource" || len(block.Labels) < 2 || block.Labels[0] != ResourceType {
			continue
		}
		name := block.Labels[1]
		checks = append(checks, ResourceCheck{Resource: name, Err: checkResource(name, block.Body)})
	}
	return checks
}

// ValidateStructure returns the first structural violation in the document.
// A document without any connector resource is itself a violation.
func ValidateStructure(file *hcldoc.File) error {
	checks := CheckStructure(file)
	if len(checks) == 0 {
		return apperr.New(apperr.KindStructuralViolation,
			"No '"+ResourceType+"' resources found in file").WithField("resource")
	}
	for _, c := range checks {
		if c.Err != nil {
			return c.Err
		}
	}
	return nil
}

func checkResource(name string, body *hcldoc.Body) error {
	if body == nil {
		body = &hcldoc.Body{}
	}

	if _, ok := body.Attribute(AttrStatus); !ok {
		return apperr.NewStructuralViolation(name, AttrStatus, "missing 'status' field")
	}

	env, ok := body.Block(BlockEnvironment)
	if !ok {
		return apperr.NewStructuralViolation(name, BlockEnvironment, "missing 'environment { id = ... }' block")
	}
	if _, ok := env.Body.Attribute("id"); !ok {
		found := "none"
		if attrs := env.Body.Attributes(); len(attrs) > 0 {
			names := make([]string, len(attrs))
			for i, a := range attrs {
				names[i] = a.Name
			}
			found = strings.Join(names, ", ")
		}
		return apperr.NewStructuralViolation(name, BlockEnvironment,
			"environment block must have 'id' attribute (found: "+found+")")
	}

	cluster, ok := body.Block(BlockKafkaCluster)
	if !ok {
		return apperr.NewStructuralViolation(name, BlockKafkaCluster, "missing 'kafka_cluster { id = ... }' block")
	}
	if _, ok := cluster.Body.Attribute("id"); !ok {
		return apperr.NewStructuralViolation(name, BlockKafkaCluster, "kafka_cluster block must have 'id' attribute")
	}

	if _, ok := body.Attribute(AttrConfigSensitive); !ok {
		return apperr.NewStructuralViolation(name, AttrConfigSensitive, "missing 'config_sensitive' attribute")
	}
	if _, ok := body.Attribute(AttrConfigNonSensitive); !ok {
		return apperr.NewStructuralViolation(name, AttrConfigNonSensitive, "missing 'config_nonsensitive' attribute")
	}

	return nil
}
