package terraform

import (
	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// Connector lifecycle states accepted by the status variable.
var connectorStates = []string{"RUNNING", "PAUSED"}

// Scaffold file names written by GenerateScaffoldFiles.
const (
	VariablesFile = "variables.tf"
	LocalsFile    = "locals.tf"
)

// BuildScaffold assembles the variable and locals declarations that generated
// connector resources reference: var.status, var.environment_id,
// var.kafka_cluster and local.schema_formats.
func BuildScaffold() *hcldoc.File {
	file := BuildVariables()
	file.Body.Items = append(file.Body.Items, BuildLocals().Body.Items...)
	return file
}

// BuildVariables returns the variable declarations of the scaffold.
func BuildVariables() *hcldoc.File {
	file := hcldoc.NewFile()

	status := file.Body.AppendBlock("variable", "status")
	status.Body.AppendAttribute("description", str("Desired connector state"))
	status.Body.AppendAttribute("type", hcldoc.Variable{Name: "string"})
	status.Body.AppendAttribute("default", str(connectorStates[0]))
	states := make([]hcldoc.Expression, len(connectorStates))
	for i, st := range connectorStates {
		states[i] = str(st)
	}
	validation := status.Body.AppendBlock("validation")
	validation.Body.AppendAttribute("condition", hcldoc.FuncCall{
		Name: "contains",
		Args: []hcldoc.Expression{hcldoc.Array{Items: states}, hcldoc.Ref("var.status")},
	})
	validation.Body.AppendAttribute("error_message", str("status must be RUNNING or PAUSED."))

	env := file.Body.AppendBlock("variable", "environment_id")
	env.Body.AppendAttribute("description", str("Confluent Cloud environment ID"))
	env.Body.AppendAttribute("type", hcldoc.Variable{Name: "string"})

	cluster := file.Body.AppendBlock("variable", "kafka_cluster")
	cluster.Body.AppendAttribute("description", str("Kafka cluster the connectors run against"))
	clusterType := hcldoc.Object{}
	clusterType.Set(hcldoc.Key("id"), hcldoc.Variable{Name: "string"})
	cluster.Body.AppendAttribute("type", hcldoc.FuncCall{
		Name: "object",
		Args: []hcldoc.Expression{clusterType},
	})

	return file
}

// BuildLocals returns the locals block holding the schema format table.
func BuildLocals() *hcldoc.File {
	file := hcldoc.NewFile()

	formats := hcldoc.Object{}
	for _, f := range catalog.DataFormats() {
		formats.Set(hcldoc.Key(f.TableKey()), str(f.Token()))
	}
	locals := file.Body.AppendBlock("locals")
	locals.Body.AppendAttribute("schema_formats", formats)

	return file
}

// GenerateScaffold renders BuildScaffold with the generator's printer.
func (g *Generator) GenerateScaffold() (string, error) {
	return g.print(BuildScaffold())
}

// GenerateScaffoldFiles renders the scaffold split into VariablesFile and
// LocalsFile, keyed by file name.
func (g *Generator) GenerateScaffoldFiles() (map[string]string, error) {
	variables, err := g.print(BuildVariables())
	if err != nil {
		return nil, err
	}
	locals, err := g.print(BuildLocals())
	if err != nil {
		return nil, err
	}
	return map[string]string{
		VariablesFile: variables,
		LocalsFile:    locals,
	}, nil
}

func (g *Generator) print(file *hcldoc.File) (string, error) {
	out, err := g.printer.Print(file)
	if err != nil {
		return "", apperr.NewGenerationFailure("Failed to serialize HCL", err)
	}
	return string(out), nil
}
