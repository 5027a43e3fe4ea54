package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/hcldoc"
	"github.com/connect-util/connect-util/pkg/policy"
	"github.com/connect-util/connect-util/pkg/telemetry"
	"github.com/connect-util/connect-util/pkg/terraform"
)

// Validator runs the validation pipeline over connector documents.
type Validator struct {
	catalog *catalog.Catalog
	parser  hcldoc.Parser
	engine  *policy.Engine
	logger  zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithPolicyEngine evaluates the engine's policies after the built-in checks.
func WithPolicyEngine(e *policy.Engine) Option {
	return func(v *Validator) {
		v.engine = e
	}
}

// WithParser replaces the default HCL parser.
func WithParser(p hcldoc.Parser) Option {
	return func(v *Validator) {
		v.parser = p
	}
}

// New creates a validator backed by cat.
func New(cat *catalog.Catalog, logger zerolog.Logger, opts ...Option) *Validator {
	v := &Validator{
		catalog: cat,
		parser:  hcldoc.NewHCL(),
		logger:  logger.With().Str("component", "validator").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateFile reads path and validates its contents.
func (v *Validator) ValidateFile(ctx context.Context, path string) (*Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.New(apperr.KindConfig, "Configuration file not found: "+path)
		}
		return nil, apperr.Wrap(apperr.KindIO, "failed to read "+path, err)
	}
	return v.Validate(ctx, src, path)
}

// Validate runs the pipeline over src:
//
//   - a document made only of comments is accepted as is
//   - the document is parsed; a syntax error aborts
//   - a document without connector configurations is an error
//   - each connector is checked against its catalog definition; failures are
//     recorded in the report, an unknown connector class aborts
//   - every connector resource is checked for the required shape
//   - policies are evaluated when an engine is configured
//
// The first structural violation is returned as an error together with the
// complete report.
func (v *Validator) Validate(ctx context.Context, src []byte, filename string) (report *Report, err error) {
	op := telemetry.StartOperation(ctx, "validate.document", telemetry.AttrFile.String(filename))
	defer func() { op.End(err) }()
	ctx = op.Ctx

	report = &Report{File: filename}
	defer func() {
		if report != nil {
			report.Duration = op.Timer.Duration()
		}
	}()

	if isCommentedOut(src) {
		v.logger.Debug().Str("file", filename).Msg("File is commented out")
		report.Commented = true
		return report, nil
	}

	file, err := terraform.ParseDocument(v.parser, src, filename)
	if err != nil {
		return nil, err
	}

	configs := terraform.ParseConnectors(file)
	if len(configs) == 0 {
		return nil, apperr.New(apperr.KindConfig, "No connector configurations found in the file.")
	}
	op.Span.SetAttributes(telemetry.AttrConnectorCount.Int(len(configs)))

	v.logger.Debug().
		Str("file", filename).
		Int("connectors", len(configs)).
		Msg("Validating connector configurations")

	metrics := metricsFrom(ctx)
	for _, cfg := range configs {
		result, err := v.validateConnector(cfg, op.Logger)
		if err != nil {
			return nil, err
		}
		report.Connectors = append(report.Connectors, result)
		if metrics != nil {
			metrics.RecordValidated(result.Valid)
			if !result.Valid {
				metrics.RecordFinding(string(result.Kind))
			}
		}
	}

	for _, check := range terraform.CheckStructure(file) {
		sr := StructureResult{Resource: check.Resource, Valid: check.OK()}
		if check.Err != nil {
			sr.Error = check.Err.Error()
		}
		report.Structure = append(report.Structure, sr)
	}
	structErr := terraform.ValidateStructure(file)
	if structErr != nil {
		report.StructureError = structErr.Error()
		if metrics != nil {
			metrics.RecordFinding(string(apperr.KindStructuralViolation))
		}
	}

	if v.engine != nil {
		result, err := v.engine.Evaluate(ctx, filename, configs)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate policies: %w", err)
		}
		report.Policy = result
		if metrics != nil {
			for _, viol := range result.Violations {
				metrics.RecordPolicyViolation(viol.Policy, string(viol.Severity))
			}
		}
	}

	v.logger.Debug().
		Str("file", filename).
		Int("invalid", report.InvalidCount()).
		Bool("structure_ok", structErr == nil).
		Msg("Validation finished")

	if structErr != nil {
		return report, structErr
	}
	return report, nil
}

// validateConnector checks cfg against the catalog definition of its class.
// Schema failures land in the result; any other error aborts the run.
func (v *Validator) validateConnector(cfg terraform.ConnectorConfig, log *telemetry.Logger) (ConnectorResult, error) {
	def, ok := v.catalog.FindByName(cfg.ConnectorClass)
	if !ok {
		return ConnectorResult{}, apperr.NewUnknownConnector(cfg.ConnectorClass).WithResource(cfg.Name)
	}

	result := ConnectorResult{
		Name:              cfg.Name,
		ConnectorClass:    cfg.ConnectorClass,
		DisplayName:       def.DisplayName,
		Valid:             true,
		NonSensitiveCount: len(cfg.Config),
		SensitiveCount:    len(cfg.SensitiveConfig),
	}

	err := def.ValidateConfig(cfg.Config, cfg.SensitiveConfig)
	switch {
	case err == nil:
		log.WithConnector(cfg.Name, cfg.ConnectorClass).Debug("Connector configuration valid")
	case apperr.IsSchemaFailure(err):
		result.Valid = false
		result.Error = err.Error()
		result.Kind, _ = apperr.KindOf(err)
		log.WithConnector(cfg.Name, cfg.ConnectorClass).Debugf("Connector configuration invalid: %v", err)
	default:
		return ConnectorResult{}, fmt.Errorf("failed to validate connector %s: %w", cfg.Name, err)
	}

	return result, nil
}

func metricsFrom(ctx context.Context) *telemetry.Metrics {
	if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
		return tel.Metrics
	}
	return nil
}

// isCommentedOut reports whether every non-blank line starts with '#'. A
// blank document qualifies.
func isCommentedOut(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return false
		}
	}
	return true
}
